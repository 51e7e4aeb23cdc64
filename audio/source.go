package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"dnbseq/pattern"
	"dnbseq/sequencer"
)

const (
	// ChannelCount is stereo; both channels carry the same mix.
	ChannelCount = 2

	// pulseLevel is the synthesized clock level fed to the engine's
	// edge detector (one high sample per sub-pulse).
	pulseLevel = 5.0

	minBPM = 20
	maxBPM = 300
)

// trackLevels mixes the four gate streams to one audible signal. The
// gates stay binary - each track contributes a flat 10ms click at its
// own level, no synthesis.
var trackLevels = [pattern.NumTracks]float32{
	pattern.Kick:  0.50,
	pattern.Snare: 0.40,
	pattern.HiHat: 0.20,
	pattern.Ghost: 0.12,
}

// Source drives the engine's render path from an internal 24 PPQN
// pulse generator and renders the gate streams as float32 LE stereo
// frames. It implements io.Reader for the audio player.
type Source struct {
	eng        *sequencer.Engine
	sampleRate int
	bpm        atomic.Int32
	resetReq   atomic.Bool

	// Render-loop state, touched only inside Read.
	phase int
}

// NewSource creates a source clocking eng at the given tempo.
func NewSource(eng *sequencer.Engine, bpm int) *Source {
	s := &Source{
		eng:        eng,
		sampleRate: eng.SampleRate(),
	}
	s.SetBPM(bpm)
	return s
}

// SetBPM sets the internal clock tempo, clamped to a sane range.
func (s *Source) SetBPM(bpm int) {
	if bpm < minBPM {
		bpm = minBPM
	}
	if bpm > maxBPM {
		bpm = maxBPM
	}
	s.bpm.Store(int32(bpm))
}

// BPM returns the internal clock tempo.
func (s *Source) BPM() int {
	return int(s.bpm.Load())
}

// RequestReset raises a reset pulse on the next rendered sample.
func (s *Source) RequestReset() {
	s.resetReq.Store(true)
}

// pulseInterval returns the sub-pulse spacing in samples for the
// current tempo: 24 pulses per quarter note.
func (s *Source) pulseInterval() int {
	interval := s.sampleRate * 60 / (int(s.bpm.Load()) * 24)
	if interval < 2 {
		interval = 2 // edge detection needs a low sample between pulses
	}
	return interval
}

// Read renders len(p)/8 stereo float32 frames, stepping the engine
// once per frame. This is the render path: no allocation, no locks.
func (s *Source) Read(p []byte) (int, error) {
	interval := s.pulseInterval()
	frames := len(p) / (4 * ChannelCount)

	for i := 0; i < frames; i++ {
		var clock float32
		if s.phase == 0 {
			clock = pulseLevel
		}
		s.phase++
		if s.phase >= interval {
			s.phase = 0
		}

		var reset float32
		if s.resetReq.CompareAndSwap(true, false) {
			reset = pulseLevel
		}

		gates := s.eng.ProcessSample(clock, reset)
		var mix float32
		for t, on := range gates {
			if on {
				mix += trackLevels[t]
			}
		}

		bits := math.Float32bits(mix)
		off := i * 4 * ChannelCount
		binary.LittleEndian.PutUint32(p[off:], bits)
		binary.LittleEndian.PutUint32(p[off+4:], bits)
	}
	return frames * 4 * ChannelCount, nil
}
