package host

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-pedalboard/engine"
)

// NullHost drives the callback from a ticker at the block rate with silent
// inputs and discarded outputs. It runs the engine headless, e.g. to
// record a backing track through the effects.
type NullHost struct {
	mu     sync.Mutex
	quit   chan struct{}
	done   chan struct{}
	blocks atomic.Uint64
}

// Start begins ticking.
func (h *NullHost) Start(cfg engine.StreamConfig, render func(in, out [][]float32)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.quit != nil {
		return errors.New("host: null stream already running")
	}
	if cfg.SampleRate <= 0 || cfg.BlockSize <= 0 {
		return errors.New("host: invalid stream format")
	}

	in := make([][]float32, cfg.InputChannels)
	for c := range in {
		in[c] = make([]float32, cfg.BlockSize)
	}
	out := make([][]float32, cfg.OutputChannels)
	for c := range out {
		out[c] = make([]float32, cfg.BlockSize)
	}
	period := time.Duration(float64(cfg.BlockSize) / cfg.SampleRate * float64(time.Second))

	h.quit = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(period, render, in, out, h.quit, h.done)

	return nil
}

func (h *NullHost) run(period time.Duration, render func(in, out [][]float32), in, out [][]float32, quit, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			render(in, out)
			h.blocks.Add(1)
		case <-quit:
			return
		}
	}
}

// Stop halts the ticker and waits for the last callback to return.
func (h *NullHost) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.quit == nil {
		return nil
	}
	close(h.quit)
	<-h.done
	h.quit, h.done = nil, nil
	return nil
}

// Blocks returns how many callbacks have run.
func (h *NullHost) Blocks() uint64 { return h.blocks.Load() }
