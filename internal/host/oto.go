package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-pedalboard/engine"
)

// oto allows one context per process, fixed at its first format.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoFormat  [2]int
	otoErr     error
)

func otoContextFor(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoContext = ctx
		otoFormat = [2]int{sampleRate, channels}
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoFormat != [2]int{sampleRate, channels} {
		return nil, fmt.Errorf("host: oto context already open at %d Hz, %d channels", otoFormat[0], otoFormat[1])
	}
	return otoContext, nil
}

// OtoHost is an output-only backend. The render callback sees silent
// inputs; it runs when the oto player pulls samples.
type OtoHost struct {
	logger *slog.Logger

	mu     sync.Mutex
	player *oto.Player
}

// Start opens the shared oto context and starts pulling blocks.
func (h *OtoHost) Start(cfg engine.StreamConfig, render func(in, out [][]float32)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.player != nil {
		return errors.New("host: oto player already running")
	}
	ctx, err := otoContextFor(int(cfg.SampleRate), cfg.OutputChannels)
	if err != nil {
		return fmt.Errorf("host: oto: %w", err)
	}

	h.player = ctx.NewPlayer(newPullReader(cfg, render))
	h.player.Play()
	h.logger.Debug("oto player started", "sample_rate", cfg.SampleRate, "channels", cfg.OutputChannels)

	return nil
}

// Stop closes the player. The oto context stays open.
func (h *OtoHost) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.player == nil {
		return nil
	}
	err := h.player.Close()
	h.player = nil
	return err
}

// pullReader renders blocks on demand and interleaves them as
// little-endian float32 frames.
type pullReader struct {
	render    func(in, out [][]float32)
	blockSize int
	in        [][]float32
	out       [][]float32
	views     [][]float32
}

func newPullReader(cfg engine.StreamConfig, render func(in, out [][]float32)) *pullReader {
	r := &pullReader{
		render:    render,
		blockSize: cfg.BlockSize,
		in:        make([][]float32, cfg.InputChannels),
		out:       make([][]float32, cfg.OutputChannels),
		views:     make([][]float32, cfg.OutputChannels),
	}
	for c := range r.in {
		r.in[c] = make([]float32, cfg.BlockSize)
	}
	for c := range r.out {
		r.out[c] = make([]float32, cfg.BlockSize)
	}
	return r
}

func (r *pullReader) Read(p []byte) (int, error) {
	channels := len(r.out)
	frameBytes := 4 * channels
	frames := len(p) / frameBytes

	for off := 0; off < frames; off += r.blockSize {
		n := min(r.blockSize, frames-off)
		in := r.in
		for c := range in {
			in[c] = in[c][:n]
		}
		for c := range r.out {
			r.views[c] = r.out[c][:n]
		}

		r.render(in, r.views)

		base := off * frameBytes
		for i := range n {
			for c := range channels {
				binary.LittleEndian.PutUint32(p[base+(i*channels+c)*4:], math.Float32bits(r.views[c][i]))
			}
		}
	}

	// Trailing bytes short of a full frame carry silence.
	tail := frames * frameBytes
	clear(p[tail:])

	return len(p), nil
}
