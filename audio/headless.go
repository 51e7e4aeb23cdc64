package audio

import (
	"sync"
	"time"
)

// Headless pumps a Source without an audio device, keeping the render
// path (and so the internal clock) running when no sound output is
// wanted - API-only mode, tests, CI.
type Headless struct {
	src  *Source
	stop chan struct{}
	once sync.Once
}

func NewHeadless(src *Source) *Headless {
	return &Headless{
		src:  src,
		stop: make(chan struct{}),
	}
}

// Start begins pumping in a background goroutine.
func (h *Headless) Start() {
	// One real-time chunk per tick.
	const tick = 20 * time.Millisecond
	frames := h.src.sampleRate / 50
	buf := make([]byte, frames*4*ChannelCount)

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				h.src.Read(buf)
			}
		}
	}()
}

// Close stops the pump.
func (h *Headless) Close() {
	h.once.Do(func() { close(h.stop) })
}
