package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"

	"dnbseq/debug"
)

// Pulser is the clock-facing side of the sequencer engine. One MIDI
// timing clock message (0xF8) is one sub-pulse; the engine divides by
// six to sixteenth steps, so the standard 24 PPQN transport maps
// straight onto it.
type Pulser interface {
	ClockPulse()
	ResetPosition()
}

// ListenClock subscribes to MIDI clock on the named input port and
// drives p from it. Start (and Continue after a rewind) reset the
// position; Stop leaves the position where it is. Returns a stop
// function.
func ListenClock(portName string, p Pulser) (func(), error) {
	for _, port := range gomidi.GetInPorts() {
		if !strings.Contains(strings.ToLower(port.String()), strings.ToLower(portName)) {
			continue
		}
		stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, _ int32) {
			handleClockMessage(msg, p)
		})
		if err != nil {
			return nil, fmt.Errorf("listen on midi in %q: %w", port.String(), err)
		}
		debug.Log("midi", "clock slave on %q", port.String())
		return stop, nil
	}
	return nil, fmt.Errorf("midi in port %q not found", portName)
}

func handleClockMessage(msg gomidi.Message, p Pulser) {
	switch {
	case msg.Is(gomidi.TimingClockMsg):
		p.ClockPulse()
	case msg.Is(gomidi.StartMsg):
		p.ResetPosition()
	}
}
