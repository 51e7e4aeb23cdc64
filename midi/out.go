package midi

import (
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"dnbseq/debug"
	"dnbseq/sequencer"
)

// Output sends sequencer triggers to a MIDI port as note on/off pairs,
// with notes and velocities taken from a kit.
type Output struct {
	send    func(gomidi.Message) error
	kit     Kit
	channel uint8 // 0-15

	stopOnce sync.Once
	stop     chan struct{}
}

// OpenOutput opens the named MIDI out port. Matching is by substring
// so "TR-8" matches "TR-8S MIDI 1". channel is the 1-based MIDI
// channel from config.
func OpenOutput(portName, kitName string, channel uint8) (*Output, error) {
	if channel < 1 || channel > 16 {
		channel = 10 // GM percussion channel
	}
	for _, port := range gomidi.GetOutPorts() {
		if !strings.Contains(strings.ToLower(port.String()), strings.ToLower(portName)) {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open midi out %q: %w", port.String(), err)
		}
		debug.Log("midi", "opened out port %q kit=%s ch=%d", port.String(), kitName, channel)
		return &Output{
			send:    send,
			kit:     GetKit(kitName),
			channel: channel - 1,
			stop:    make(chan struct{}),
		}, nil
	}
	return nil, fmt.Errorf("midi out port %q not found", portName)
}

// Run consumes triggers until Close is called or the channel closes.
// Each trigger becomes an immediate note on + note off pair; the gate
// shaping lives in the engine, MIDI receivers only need the edge.
func (o *Output) Run(triggers <-chan sequencer.Trigger) {
	for {
		select {
		case <-o.stop:
			return
		case trig, ok := <-triggers:
			if !ok {
				return
			}
			note := o.kit.Notes[trig.Track]
			vel := o.kit.Velocity[trig.Track]
			o.send(gomidi.NoteOn(o.channel, note, vel))
			o.send(gomidi.NoteOff(o.channel, note))
			debug.LogEvery(32, "midi", "trigger track=%s step=%d note=%d", trig.Track, trig.Step, note)
		}
	}
}

// Close stops the Run loop. The driver itself is closed by
// CloseDriver at shutdown.
func (o *Output) Close() {
	o.stopOnce.Do(func() { close(o.stop) })
}

// CloseDriver releases the MIDI driver. Call once at process exit.
func CloseDriver() {
	gomidi.CloseDriver()
}

// OutPorts lists the available MIDI output port names.
func OutPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// InPorts lists the available MIDI input port names.
func InPorts() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}
