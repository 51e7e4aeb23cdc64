package sequencer

import (
	"testing"

	"dnbseq/pattern"
)

const testRate = 1000 // 10ms gate = 10 samples

// clockEdge feeds one rising clock edge (one high sample, one low).
func clockEdge(e *Engine) (high, low Gates) {
	high = e.ProcessSample(5, 0)
	low = e.ProcessSample(0, 0)
	return high, low
}

// stepOnce advances exactly one step (6 clock edges).
func stepOnce(e *Engine) {
	for i := 0; i < PulsesPerStep; i++ {
		clockEdge(e)
	}
}

func TestClockDivision(t *testing.T) {
	e := New(testRate)

	for i := 0; i < PulsesPerStep-1; i++ {
		clockEdge(e)
		if got := e.Snapshot().Step; got != 0 {
			t.Fatalf("after %d edges: step = %d, want 0", i+1, got)
		}
	}
	clockEdge(e)
	if got := e.Snapshot().Step; got != 1 {
		t.Fatalf("after %d edges: step = %d, want 1", PulsesPerStep, got)
	}
}

func TestHeldHighClockCountsOnce(t *testing.T) {
	e := New(testRate)
	// A clock stuck high is one edge, not many.
	for i := 0; i < 20; i++ {
		e.ProcessSample(5, 0)
	}
	e.ProcessSample(0, 0)
	for i := 0; i < PulsesPerStep-1; i++ {
		clockEdge(e)
	}
	if got := e.Snapshot().Step; got != 1 {
		t.Fatalf("step = %d, want 1 (held-high level must count as one pulse)", got)
	}
}

func TestResetEdgeRestoresPosition(t *testing.T) {
	e := New(testRate)

	// Advance to step 3 plus a few sub-pulses.
	for i := 0; i < 3; i++ {
		stepOnce(e)
	}
	clockEdge(e)
	clockEdge(e)
	if got := e.Snapshot().Step; got != 3 {
		t.Fatalf("setup: step = %d, want 3", got)
	}

	e.ProcessSample(0, 5)
	if got := e.Snapshot().Step; got != 0 {
		t.Fatalf("after reset: step = %d, want 0", got)
	}

	// The sub-pulse counter was cleared too: a full divisor of edges
	// is needed before the next advance.
	for i := 0; i < PulsesPerStep-1; i++ {
		clockEdge(e)
		if got := e.Snapshot().Step; got != 0 {
			t.Fatalf("after reset + %d edges: step = %d, want 0", i+1, got)
		}
	}
	clockEdge(e)
	if got := e.Snapshot().Step; got != 1 {
		t.Fatalf("after reset + %d edges: step = %d, want 1", PulsesPerStep, got)
	}
}

func TestResetLeavesGatesRunning(t *testing.T) {
	e := New(testRate)

	// Step 0 -> 1 -> 2; step 2 has a hi-hat hit in Two-Step.
	stepOnce(e)
	stepOnce(e)
	gates := e.ProcessSample(0, 0)
	if !gates[pattern.HiHat] {
		t.Fatal("setup: expected hi-hat gate high at step 2")
	}

	// Reset mid-gate: position restores, the countdown keeps going.
	gates = e.ProcessSample(0, 5)
	if !gates[pattern.HiHat] {
		t.Error("reset must not clear an in-flight gate")
	}
	if got := e.Snapshot().Step; got != 0 {
		t.Errorf("after reset: step = %d, want 0", got)
	}
}

func TestGateDuration(t *testing.T) {
	e := New(testRate)

	// Advance to step 2 (hi-hat hit). The advancing edge sample is the
	// first high sample of the gate.
	stepOnce(e)
	for i := 0; i < PulsesPerStep-1; i++ {
		clockEdge(e)
	}
	count := 0
	if g := e.ProcessSample(5, 0); g[pattern.HiHat] {
		count++
	}
	for i := 0; i < 3*testRate*GateMillis/1000; i++ {
		if g := e.ProcessSample(0, 0); g[pattern.HiHat] {
			count++
		}
	}
	want := testRate * GateMillis / 1000
	if count != want {
		t.Fatalf("gate held for %d samples, want %d", count, want)
	}
}

func TestPatternChangeDeferredToLoopStart(t *testing.T) {
	e := New(testRate)
	stepOnce(e) // step 1

	e.SelectPattern(6)
	if got := e.PendingPattern(); got != 6 {
		t.Fatalf("PendingPattern = %d, want 6", got)
	}
	if got := e.Snapshot().PatternID; got != 0 {
		t.Fatalf("pattern switched early: id = %d", got)
	}

	// Drive up to the last step: still the old pattern.
	for s := 1; s < 16-1; s++ {
		stepOnce(e)
	}
	if got := e.Snapshot().PatternID; got != 0 {
		t.Fatalf("pattern switched before loop boundary: id = %d", got)
	}

	// The wrap to step 0 applies the change to base and current.
	stepOnce(e)
	snap := e.Snapshot()
	if snap.Step != 0 {
		t.Fatalf("step = %d, want 0", snap.Step)
	}
	if snap.PatternID != 6 || snap.PatternName != "Halftime" {
		t.Fatalf("pattern = %d %q, want 6 Halftime", snap.PatternID, snap.PatternName)
	}
	if snap.PendingID != -1 {
		t.Fatalf("pending not cleared: %d", snap.PendingID)
	}
	if e.Base().ID != 6 {
		t.Fatalf("base not replaced: id = %d", e.Base().ID)
	}
}

func TestSelectPatternClampsID(t *testing.T) {
	e := New(testRate)
	e.SelectPattern(42)
	if got := e.PendingPattern(); got != 0 {
		t.Fatalf("PendingPattern = %d, want 0 (clamped)", got)
	}
}

func TestEndToEndTwoStepLoop(t *testing.T) {
	e := New(testRate)

	// 16 steps x 6 sub-pulses brings the position back to 0.
	for i := 0; i < 96; i++ {
		clockEdge(e)
	}
	snap := e.Snapshot()
	if snap.Step != 0 {
		t.Fatalf("after 96 edges: step = %d, want 0", snap.Step)
	}
	if e.Current() != e.Base() {
		t.Fatal("current diverged from base without any mutation")
	}
}

func TestProbabilityZeroNeverArms(t *testing.T) {
	e := New(testRate)
	e.SetProbability(pattern.Kick, 0)

	kickSeen, snareSeen := false, false
	for i := 0; i < 96; i++ {
		high, low := clockEdge(e)
		kickSeen = kickSeen || high[pattern.Kick] || low[pattern.Kick]
		snareSeen = snareSeen || high[pattern.Snare] || low[pattern.Snare]
	}
	if kickSeen {
		t.Error("kick armed with probability 0")
	}
	if !snareSeen {
		t.Error("snare (probability 1) never armed over a full loop")
	}
}

func TestProbabilityOneAlwaysArms(t *testing.T) {
	e := New(testRate)

	// Two-Step kick hits at steps 0 and 10; both must arm every loop.
	for loop := 0; loop < 4; loop++ {
		hits := 0
		for s := 0; s < 16; s++ {
			stepOnce(e)
			if e.ProcessSample(0, 0)[pattern.Kick] {
				hits++
			}
		}
		if hits != 2 {
			t.Fatalf("loop %d: kick armed %d times, want 2", loop, hits)
		}
	}
}

func TestHiHatIgnoresProbability(t *testing.T) {
	e := New(testRate)
	e.SetProbability(pattern.HiHat, 0) // must be a no-op
	if got := e.Probability(pattern.HiHat); got != 1 {
		t.Fatalf("hi-hat probability = %v, want 1", got)
	}

	hihat := 0
	for s := 0; s < 16; s++ {
		stepOnce(e)
		if e.ProcessSample(0, 0)[pattern.HiHat] {
			hihat++
		}
	}
	if hihat != 8 {
		t.Fatalf("hi-hat armed %d times over a Two-Step loop, want 8", hihat)
	}
}

func TestProbabilityClamped(t *testing.T) {
	e := New(testRate)
	e.SetProbability(pattern.Ghost, 1.5)
	if got := e.Probability(pattern.Ghost); got != 1 {
		t.Errorf("Probability = %v, want 1", got)
	}
	e.SetProbability(pattern.Ghost, -0.5)
	if got := e.Probability(pattern.Ghost); got != 0 {
		t.Errorf("Probability = %v, want 0", got)
	}
}

func TestTriggersPublished(t *testing.T) {
	e := New(testRate)

	// Step 0 -> 1 -> 2: the step-2 hi-hat hit publishes a trigger.
	stepOnce(e)
	stepOnce(e)

	found := false
	for {
		select {
		case trig := <-e.Triggers():
			if trig.Track == pattern.HiHat && trig.Step == 2 {
				found = true
			}
		default:
			if !found {
				t.Fatal("no hi-hat trigger for step 2")
			}
			return
		}
	}
}
