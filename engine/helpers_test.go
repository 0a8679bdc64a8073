package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cwbudde/algo-pedalboard/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()

	e, err := New(append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// render feeds inputs through e in blocks of blockSize and returns the
// output channels widened to float64.
func render(e *Engine, blockSize int, inputs ...[]float64) [][]float64 {
	frames := 0
	if len(inputs) > 0 {
		frames = len(inputs[0])
	}

	outs := make([][]float64, e.Config().OutputChannels)
	for c := range outs {
		outs[c] = make([]float64, 0, frames)
	}

	in := make([][]float32, len(inputs))
	out := make([][]float32, len(outs))
	for off := 0; off < frames; off += blockSize {
		n := min(blockSize, frames-off)
		for c, x := range inputs {
			in[c] = testutil.Float32(x[off : off+n])
		}
		for c := range out {
			out[c] = make([]float32, n)
		}

		e.Render(in, out)

		for c, ch := range out {
			for _, v := range ch {
				outs[c] = append(outs[c], float64(v))
			}
		}
	}
	return outs
}

type fakeHost struct {
	cfg      StreamConfig
	callback func(in, out [][]float32)
	startErr error
	stopErr  error
	stops    int
}

func (h *fakeHost) Start(cfg StreamConfig, render func(in, out [][]float32)) error {
	if h.startErr != nil {
		return h.startErr
	}
	h.cfg = cfg
	h.callback = render
	return nil
}

func (h *fakeHost) Stop() error {
	h.stops++
	return h.stopErr
}

// pump runs the host callback over blocks of silence.
func (h *fakeHost) pump(blocks int) {
	in := [][]float32{make([]float32, h.cfg.BlockSize)}
	out := make([][]float32, h.cfg.OutputChannels)
	for c := range out {
		out[c] = make([]float32, h.cfg.BlockSize)
	}
	for range blocks {
		h.callback(in, out)
	}
}
