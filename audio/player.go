package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player owns the oto context and pulls samples from a Source.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	mutex   sync.Mutex // setup/control only, never the sample path
	started bool
}

// NewPlayer opens the audio device at the source's sample rate. The
// source's Read is the render path; keep the buffer small so gates
// land close to their steps.
func NewPlayer(src *Source) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   src.sampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{ctx: ctx}
	p.player = ctx.NewPlayer(src)
	return p, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback without releasing the device.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close releases the player.
func (p *Player) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
	p.started = false
}

// IsStarted reports whether playback is running.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
