package sequencer

import (
	"math/rand"
	"testing"

	"dnbseq/pattern"
)

// backbeatPreserved checks that every snare backbeat cell inside the
// step range carries the same value in got as in base.
func backbeatPreserved(t *testing.T, base, got pattern.Pattern) {
	t.Helper()
	for pos := 0; pos < base.Steps; pos++ {
		if !pattern.Backbeat(pattern.Snare, pos) {
			continue
		}
		if got.Hits[pattern.Snare][pos] != base.Hits[pattern.Snare][pos] {
			t.Fatalf("backbeat cell %d changed: %v -> %v",
				pos, base.Hits[pattern.Snare][pos], got.Hits[pattern.Snare][pos])
		}
	}
}

func countHits(row [pattern.MaxSteps]bool, steps int) int {
	n := 0
	for s := 0; s < steps; s++ {
		if row[s] {
			n++
		}
	}
	return n
}

func diffCells(a, b pattern.Pattern) int {
	n := 0
	for t := 0; t < pattern.NumTracks; t++ {
		for s := 0; s < a.Steps; s++ {
			if a.Hits[t][s] != b.Hits[t][s] {
				n++
			}
		}
	}
	return n
}

func TestBackbeatSurvivesEveryStrategy(t *testing.T) {
	strategies := []Strategy{
		StrategyToggle, StrategySeeded, StrategyCopyTrack,
		StrategySlide, StrategyRemove, StrategySwap,
	}
	for id := 0; id < pattern.Count(); id++ {
		for _, s := range strategies {
			e := New(testRate)
			e.LoadPattern(id)
			base := e.Base()
			for i := 0; i < 200; i++ {
				e.Vary(s)
				backbeatPreserved(t, base, e.Current())
			}
		}
	}
}

func TestVaryDerivesFromBaseNotCurrent(t *testing.T) {
	e := New(testRate)
	base := e.Base()

	// Mutations stack against base, never against each other, and base
	// itself is never perturbed.
	for i := 0; i < 50; i++ {
		e.Vary(StrategyToggle)
		if got := e.Base(); got != base {
			t.Fatal("base pattern was perturbed by a variation")
		}
		if d := diffCells(base, e.Current()); d > 1 {
			t.Fatalf("toggle differs from base in %d cells, want at most 1", d)
		}
	}
}

func TestSeededVariationIsReproducible(t *testing.T) {
	for _, seed := range []int64{0, 1, -7, 42, 1 << 40} {
		a := New(testRate)
		b := New(testRate)
		a.VarySeeded(seed)
		b.VarySeeded(seed)
		if a.Current() != b.Current() {
			t.Fatalf("seed %d: two engines produced different variations", seed)
		}

		// Re-deriving with the same seed is idempotent.
		first := a.Current()
		a.VarySeeded(seed)
		if a.Current() != first {
			t.Fatalf("seed %d: re-derivation changed the result", seed)
		}
	}
}

func TestSeededVariationNeverTouchesHiHat(t *testing.T) {
	e := New(testRate)
	base := e.Base()
	for seed := int64(0); seed < 500; seed++ {
		e.VarySeeded(seed)
		if e.Current().Hits[pattern.HiHat] != base.Hits[pattern.HiHat] {
			t.Fatalf("seed %d: hi-hat row changed", seed)
		}
	}
}

func TestSeededVariationRespectsProbability(t *testing.T) {
	e := New(testRate)
	e.SetProbability(pattern.Kick, 0)
	e.SetProbability(pattern.Snare, 0)
	e.SetProbability(pattern.Ghost, 0)

	base := e.Base()
	for seed := int64(0); seed < 100; seed++ {
		e.VarySeeded(seed)
		if e.Current() != base {
			t.Fatalf("seed %d: variation applied with all probabilities 0", seed)
		}
	}
}

func TestNudgeSeedAccumulates(t *testing.T) {
	e := New(testRate)
	if got := e.NudgeSeed(1); got != 1 {
		t.Fatalf("seed = %d, want 1", got)
	}
	if got := e.NudgeSeed(1); got != 2 {
		t.Fatalf("seed = %d, want 2", got)
	}
	if got := e.NudgeSeed(-1); got != 1 {
		t.Fatalf("seed = %d, want 1", got)
	}

	// Walking back to a seed reproduces its variation.
	atOne := e.Current()
	e.NudgeSeed(1)
	e.NudgeSeed(-1)
	if e.Current() != atOne {
		t.Fatal("returning to a seed did not reproduce its variation")
	}
}

func TestResetToDefault(t *testing.T) {
	e := New(testRate)
	base := e.Base()

	for i := 0; i < 20; i++ {
		e.Vary(StrategyToggle)
	}
	e.ResetToDefault()
	if e.Current() != base {
		t.Fatal("ResetToDefault did not restore the base pattern")
	}
}

func TestToggleChangesAtMostOneCell(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		p := pattern.Lookup(i % pattern.Count())
		orig := p
		varyToggle(&p, rnd)
		if d := diffCells(orig, p); d > 1 {
			t.Fatalf("toggle changed %d cells", d)
		}
	}
}

func TestCopyTrackLengthMismatchIsNoop(t *testing.T) {
	// Triplet Two-Step is the only 24-step pattern, so a copy either
	// sources itself (identical rows) or skips on the length check.
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		p := pattern.Lookup(7)
		orig := p
		varyCopyTrack(&p, rnd)
		if p != orig {
			t.Fatalf("iteration %d: 24-step pattern changed by cross-length copy", i)
		}
	}
}

func TestCopyTrackProducesCatalogRow(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		p := pattern.Lookup(0)
		varyCopyTrack(&p, rnd)

		// Every non-backbeat cell of every track must match some
		// 16-step catalog pattern's row for that track.
		for _, tr := range mutableTracks {
			if !rowFromCatalog(p, tr) {
				t.Fatalf("iteration %d: track %s is not a catalog row", i, tr)
			}
		}
	}
}

// rowFromCatalog reports whether p's row for tr matches at least one
// same-length catalog pattern, ignoring protected backbeat cells.
func rowFromCatalog(p pattern.Pattern, tr pattern.Track) bool {
	for id := 0; id < pattern.Count(); id++ {
		src, steps := pattern.TrackSteps(id, tr)
		if steps != p.Steps {
			continue
		}
		match := true
		for pos := 0; pos < steps; pos++ {
			if pattern.Backbeat(tr, pos) {
				continue
			}
			if p.Hits[tr][pos] != src[pos] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestSlidePreservesHitCountOffBackbeat(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		p := pattern.Lookup(i % pattern.Count())
		orig := p
		varySlide(&p, rnd)

		// Kick and ghost have no protected cells, so a slide is a pure
		// rotation and keeps the hit count.
		for _, tr := range []pattern.Track{pattern.Kick, pattern.Ghost} {
			before := countHits(orig.Hits[tr], orig.Steps)
			after := countHits(p.Hits[tr], p.Steps)
			if before != after {
				t.Fatalf("iteration %d: track %s hit count %d -> %d", i, tr, before, after)
			}
		}
		for pos := 0; pos < orig.Steps; pos++ {
			if pattern.Backbeat(pattern.Snare, pos) && p.Hits[pattern.Snare][pos] != orig.Hits[pattern.Snare][pos] {
				t.Fatalf("iteration %d: slide changed backbeat cell %d", i, pos)
			}
		}
	}
}

func TestRemoveClearsAtMostOneHit(t *testing.T) {
	rnd := rand.New(rand.NewSource(13))
	for i := 0; i < 500; i++ {
		p := pattern.Lookup(i % pattern.Count())
		orig := p
		varyRemove(&p, rnd)

		total := func(q pattern.Pattern) int {
			n := 0
			for t := 0; t < pattern.NumTracks; t++ {
				n += countHits(q.Hits[t], q.Steps)
			}
			return n
		}
		before, after := total(orig), total(p)
		if after != before && after != before-1 {
			t.Fatalf("iteration %d: hit total %d -> %d", i, before, after)
		}
		for pos := 0; pos < orig.Steps; pos++ {
			if pattern.Backbeat(pattern.Snare, pos) && p.Hits[pattern.Snare][pos] != orig.Hits[pattern.Snare][pos] {
				t.Fatalf("iteration %d: remove cleared backbeat cell %d", i, pos)
			}
		}
	}
}

func TestSwapPreservesTotalHits(t *testing.T) {
	rnd := rand.New(rand.NewSource(17))
	for i := 0; i < 500; i++ {
		p := pattern.Lookup(i % pattern.Count())
		orig := p
		varySwap(&p, rnd)

		beforeTotal, afterTotal := 0, 0
		for tr := 0; tr < pattern.NumTracks; tr++ {
			beforeTotal += countHits(orig.Hits[tr], orig.Steps)
			afterTotal += countHits(p.Hits[tr], p.Steps)
		}
		if beforeTotal != afterTotal {
			t.Fatalf("iteration %d: swap changed total hits %d -> %d", i, beforeTotal, afterTotal)
		}
		if p.Hits[pattern.HiHat] != orig.Hits[pattern.HiHat] {
			t.Fatalf("iteration %d: swap touched the hi-hat", i)
		}
		backbeatPreserved(t, orig, p)
	}
}

func TestStrategyNames(t *testing.T) {
	want := map[Strategy]string{
		StrategyToggle:    "toggle",
		StrategySeeded:    "seeded",
		StrategyCopyTrack: "copy",
		StrategySlide:     "slide",
		StrategyRemove:    "remove",
		StrategySwap:      "swap",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("Strategy(%d).String() = %q, want %q", s, s.String(), name)
		}
	}
}
