package sequencer

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"dnbseq/pattern"
)

const (
	// PulsesPerStep divides the incoming clock down to sixteenth
	// steps: 24 pulses per quarter note / 4 steps per quarter.
	PulsesPerStep = 6

	// GateMillis is the fixed trigger gate length.
	GateMillis = 10

	// edgeThreshold is the level above which an input sample counts
	// as "high" (modular gates sit around 5V, logic threshold 1V).
	edgeThreshold = 1.0

	noPending = -1
)

// Gates holds one sample of the four output gate levels.
type Gates [pattern.NumTracks]bool

// Trigger is published when a gate is armed, for consumers that want
// discrete events (MIDI out) rather than the sample stream.
type Trigger struct {
	Track pattern.Track
	Step  int
}

// edgeDetector tracks high/low state for rising edge detection.
type edgeDetector struct {
	high bool
}

func (d *edgeDetector) rising(sample float32) bool {
	high := sample > edgeThreshold
	rose := high && !d.high
	d.high = high
	return rose
}

// atomicFloat32 is a float published between the control and render
// paths without locking.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (f *atomicFloat32) Store(v float32) { f.bits.Store(math.Float32bits(v)) }
func (f *atomicFloat32) Load() float32   { return math.Float32frombits(f.bits.Load()) }

// Engine is the sequencing core. Two execution contexts touch it:
//
//   - the render path (ProcessSample, or ClockPulse/ResetPosition when
//     an external MIDI clock drives it) owns position, sub-pulse count
//     and gate countdowns, and is the only applier of queued pattern
//     changes; it never locks or allocates;
//   - the control path (SelectPattern, SetProbability, Vary*, reset)
//     writes requests into atomics and publishes whole patterns via
//     pointer swaps, so the render path can never observe a torn
//     pattern.
type Engine struct {
	sampleRate  int
	gateSamples int

	// Render path state. Only touched from the render context.
	clockEdge edgeDetector
	resetEdge edgeDetector
	pulses    int
	gate      [pattern.NumTracks]int
	rnd       *rand.Rand // probability draws

	// Shared state, atomically published.
	step    atomic.Int32
	base    atomic.Pointer[pattern.Pattern]
	current atomic.Pointer[pattern.Pattern]
	pending atomic.Int32 // queued pattern id, noPending = none
	prob    [pattern.NumTracks]atomicFloat32
	seed    atomic.Int64

	// Control path state. The TUI and the REST API are both control
	// writers, so control entry points share this mutex; the render
	// path never takes it.
	ctrlMu  sync.Mutex
	ctrlRnd *rand.Rand

	triggers chan Trigger
}

// New creates an engine playing catalog pattern 0 at the given sample
// rate.
func New(sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	e := &Engine{
		sampleRate:  sampleRate,
		gateSamples: sampleRate * GateMillis / 1000,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		ctrlRnd:     rand.New(rand.NewSource(time.Now().UnixNano() + 1)),
		triggers:    make(chan Trigger, 64),
	}
	e.pending.Store(noPending)
	for t := range e.prob {
		e.prob[t].Store(1.0)
	}
	e.LoadPattern(0)
	return e
}

// SampleRate returns the rate the gate durations are derived from.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Triggers returns the armed-gate event stream. Events are dropped,
// not blocked on, when no consumer keeps up.
func (e *Engine) Triggers() <-chan Trigger { return e.triggers }

// ProcessSample advances the engine by one output sample. clockIn and
// resetIn are raw input levels; a rising edge above the threshold on
// resetIn restores position (0,0), a rising edge on clockIn counts one
// sub-pulse. Returns the four gate levels for this sample.
//
// Reset restores position only - in-flight gate countdowns keep
// running, matching the reference hardware behavior.
func (e *Engine) ProcessSample(clockIn, resetIn float32) Gates {
	if e.resetEdge.rising(resetIn) {
		e.step.Store(0)
		e.pulses = 0
	}
	if e.clockEdge.rising(clockIn) {
		e.ClockPulse()
	}

	var out Gates
	for t := range e.gate {
		if e.gate[t] > 0 {
			out[t] = true
			e.gate[t]--
		}
	}
	return out
}

// ClockPulse counts one sub-pulse, advancing a step every
// PulsesPerStep pulses. Called from ProcessSample, or directly by a
// MIDI clock listener (one 0xF8 message = one sub-pulse).
func (e *Engine) ClockPulse() {
	e.pulses++
	if e.pulses < PulsesPerStep {
		return
	}
	e.pulses = 0
	e.advanceStep()
}

// ResetPosition immediately restores (step, sub-pulse) to (0, 0).
func (e *Engine) ResetPosition() {
	e.step.Store(0)
	e.pulses = 0
}

func (e *Engine) advanceStep() {
	cur := e.current.Load()
	if cur.Steps <= 0 {
		return
	}
	step := (int(e.step.Load()) + 1) % cur.Steps
	e.step.Store(int32(step))

	// Queued pattern changes land only at the loop boundary, so a
	// switch never truncates an in-progress loop.
	if step == 0 {
		if id := e.pending.Swap(noPending); id != noPending {
			p := pattern.Lookup(int(id))
			e.base.Store(&p)
			e.current.Store(&p)
			cur = &p
		}
	}

	e.armGates(cur, step)
}

// armGates resets every gate at the step boundary, then re-arms the
// tracks with an active hit. A new hit always starts a fresh
// full-length pulse even if the previous one had not finished.
func (e *Engine) armGates(p *pattern.Pattern, step int) {
	for t := range e.gate {
		e.gate[t] = 0
		track := pattern.Track(t)
		if !p.Hits[t][step] {
			continue
		}
		// Hi-hat is the rhythmic backbone: no probability gating.
		if track != pattern.HiHat && e.rnd.Float32() >= e.prob[t].Load() {
			continue
		}
		e.gate[t] = e.gateSamples
		select {
		case e.triggers <- Trigger{Track: track, Step: step}:
		default:
			// Drop if no consumer keeps up.
		}
	}
}
