package sequencer

import (
	"math/rand"

	"dnbseq/pattern"
)

// Variation engine. Every strategy works on a scratch copy of base and
// publishes the result as the new current pattern - base is the
// restore point and is never perturbed. The snare backbeat (steps 4,
// 12, 20, 28) survives every strategy unconditionally.

// Strategy selects a mutation algorithm.
type Strategy int

const (
	StrategyToggle Strategy = iota // flip one random cell
	StrategySeeded                 // seeded, probability-gated toggles
	StrategyCopyTrack              // copy a track from another pattern
	StrategySlide                  // shift a track's hits by one step
	StrategyRemove                 // clear one non-backbeat hit
	StrategySwap                   // exchange a step between two tracks
)

func (s Strategy) String() string {
	switch s {
	case StrategyToggle:
		return "toggle"
	case StrategySeeded:
		return "seeded"
	case StrategyCopyTrack:
		return "copy"
	case StrategySlide:
		return "slide"
	case StrategyRemove:
		return "remove"
	case StrategySwap:
		return "swap"
	}
	return "?"
}

// seededAttempts is the number of toggle attempts the seeded strategy
// makes per invocation.
const seededAttempts = 2

// mutableTracks are the tracks the structured strategies may touch.
// The hi-hat is the rhythmic backbone and is left alone by all of them
// (only the plain toggle may flip a hi-hat cell).
var mutableTracks = [...]pattern.Track{pattern.Kick, pattern.Snare, pattern.Ghost}

// Vary derives a new current pattern from base using the given
// strategy and the engine's control-path random source.
func (e *Engine) Vary(s Strategy) {
	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	scratch := *e.base.Load()
	if scratch.Steps <= 0 {
		return
	}
	switch s {
	case StrategyToggle:
		varyToggle(&scratch, e.ctrlRnd)
	case StrategySeeded:
		e.varySeeded(&scratch, rand.New(rand.NewSource(e.seed.Load())))
	case StrategyCopyTrack:
		varyCopyTrack(&scratch, e.ctrlRnd)
	case StrategySlide:
		varySlide(&scratch, e.ctrlRnd)
	case StrategyRemove:
		varyRemove(&scratch, e.ctrlRnd)
	case StrategySwap:
		varySwap(&scratch, e.ctrlRnd)
	default:
		return
	}
	e.current.Store(&scratch)
}

// VarySeeded derives a variation from base using an explicit seed.
// The same seed against the same base (and probabilities) reproduces
// the same pattern bit for bit.
func (e *Engine) VarySeeded(seed int64) {
	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	scratch := *e.base.Load()
	if scratch.Steps <= 0 {
		return
	}
	e.varySeeded(&scratch, rand.New(rand.NewSource(seed)))
	e.current.Store(&scratch)
}

// varyToggle flips one random cell across all four tracks, unless it
// is a protected backbeat position.
func varyToggle(p *pattern.Pattern, rnd *rand.Rand) {
	t := pattern.Track(rnd.Intn(pattern.NumTracks))
	pos := rnd.Intn(p.Steps)
	if pattern.Backbeat(t, pos) {
		return
	}
	p.Hits[t][pos] = !p.Hits[t][pos]
}

// varySeeded makes a small fixed number of toggle attempts over kick,
// snare and ghost, each gated by that track's probability.
func (e *Engine) varySeeded(p *pattern.Pattern, rnd *rand.Rand) {
	for i := 0; i < seededAttempts; i++ {
		t := mutableTracks[rnd.Intn(len(mutableTracks))]
		pos := rnd.Intn(p.Steps)
		if pattern.Backbeat(t, pos) {
			continue
		}
		if rnd.Float32() < e.prob[t].Load() {
			p.Hits[t][pos] = !p.Hits[t][pos]
		}
	}
}

// varyCopyTrack replaces one track with the same track from a random
// catalog pattern. Length mismatches skip the copy entirely; snare
// backbeat positions keep their original value.
func varyCopyTrack(p *pattern.Pattern, rnd *rand.Rand) {
	t := mutableTracks[rnd.Intn(len(mutableTracks))]
	src, steps := pattern.TrackSteps(rnd.Intn(pattern.Count()), t)
	if steps != p.Steps {
		return
	}
	for pos := 0; pos < p.Steps; pos++ {
		if pattern.Backbeat(t, pos) {
			continue
		}
		p.Hits[t][pos] = src[pos]
	}
}

// varySlide shifts every hit of one track by one step (direction
// random, wrapping). For the snare, backbeat cells keep their original
// value and a hit that would land on one stays where it was.
func varySlide(p *pattern.Pattern, rnd *rand.Rand) {
	t := mutableTracks[rnd.Intn(len(mutableTracks))]
	dir := 1
	if rnd.Intn(2) == 0 {
		dir = -1
	}

	old := p.Hits[t]
	var shifted [pattern.MaxSteps]bool
	for pos := 0; pos < p.Steps; pos++ {
		if pattern.Backbeat(t, pos) {
			shifted[pos] = old[pos]
		}
	}
	for pos := 0; pos < p.Steps; pos++ {
		if !old[pos] || pattern.Backbeat(t, pos) {
			continue
		}
		next := (pos + dir + p.Steps) % p.Steps
		if pattern.Backbeat(t, next) {
			shifted[pos] = true
			continue
		}
		shifted[next] = true
	}
	p.Hits[t] = shifted
}

// varyRemove clears one active, non-backbeat hit from a random track.
// The search is bounded by the step count; a track with nothing
// removable is a no-op.
func varyRemove(p *pattern.Pattern, rnd *rand.Rand) {
	t := mutableTracks[rnd.Intn(len(mutableTracks))]
	start := rnd.Intn(p.Steps)
	for i := 0; i < p.Steps; i++ {
		pos := (start + i) % p.Steps
		if p.Hits[t][pos] && !pattern.Backbeat(t, pos) {
			p.Hits[t][pos] = false
			return
		}
	}
}

// varySwap exchanges one step's value between two distinct tracks,
// unless the snare is involved at a backbeat position.
func varySwap(p *pattern.Pattern, rnd *rand.Rand) {
	i := rnd.Intn(len(mutableTracks))
	j := (i + 1 + rnd.Intn(len(mutableTracks)-1)) % len(mutableTracks)
	a, b := mutableTracks[i], mutableTracks[j]
	pos := rnd.Intn(p.Steps)
	if pattern.Backbeat(a, pos) || pattern.Backbeat(b, pos) {
		return
	}
	p.Hits[a][pos], p.Hits[b][pos] = p.Hits[b][pos], p.Hits[a][pos]
}
