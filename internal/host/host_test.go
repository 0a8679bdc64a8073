package host

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-pedalboard/engine"
)

func TestNewKnowsBackends(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		h, err := New(name, nil)
		if err != nil || h == nil {
			t.Fatalf("New(%q) = %v, %v", name, h, err)
		}
	}
	if _, err := New("alsa", nil); err == nil {
		t.Fatal("expected error for an unknown backend")
	}
}

func TestPullReaderInterleaves(t *testing.T) {
	t.Parallel()

	cfg := engine.StreamConfig{SampleRate: 48000, BlockSize: 4, InputChannels: 1, OutputChannels: 2}
	var calls, lastFrames int
	render := func(in, out [][]float32) {
		calls++
		lastFrames = len(out[0])
		for c := range out {
			for i := range out[c] {
				out[c][i] = float32(c) + float32(i)/10
			}
		}
		if len(in[0]) != len(out[0]) {
			t.Errorf("in has %d frames, out %d", len(in[0]), len(out[0]))
		}
	}
	r := newPullReader(cfg, render)

	// Ten frames and two stray bytes: two full blocks and one of two frames.
	p := make([]byte, 10*8+2)
	for i := range p {
		p[i] = 0xff
	}
	n, err := r.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if calls != 3 || lastFrames != 2 {
		t.Fatalf("render calls = %d, last block %d frames", calls, lastFrames)
	}

	sample := func(frame, ch int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(p[(frame*2+ch)*4:]))
	}
	for frame := range 10 {
		i := frame % 4
		for ch := range 2 {
			want := float32(ch) + float32(i)/10
			if got := sample(frame, ch); got != want {
				t.Fatalf("frame %d ch %d = %v, want %v", frame, ch, got, want)
			}
		}
	}
	if p[80] != 0 || p[81] != 0 {
		t.Fatal("partial frame bytes not silenced")
	}
}

func TestNullHostTicks(t *testing.T) {
	t.Parallel()

	h := &NullHost{}
	cfg := engine.StreamConfig{SampleRate: 48000, BlockSize: 48, InputChannels: 1, OutputChannels: 2}

	ticks := make(chan int, 64)
	render := func(in, out [][]float32) {
		select {
		case ticks <- len(out[0]):
		default:
		}
	}

	if err := h.Start(cfg, render); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Start(cfg, render); err == nil {
		t.Fatal("second Start succeeded")
	}

	deadline := time.After(5 * time.Second)
	for range 3 {
		select {
		case n := <-ticks:
			if n != 48 {
				t.Fatalf("block of %d frames", n)
			}
		case <-deadline:
			t.Fatal("null host did not tick")
		}
	}

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	stopped := h.Blocks()
	time.Sleep(10 * time.Millisecond)
	if h.Blocks() != stopped {
		t.Fatal("callback ran after Stop")
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestNullHostDrivesEngine(t *testing.T) {
	t.Parallel()

	e, err := engine.New(engine.WithBlockSize(64))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	h := &NullHost{}
	if err := e.Start(h); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = e.SetMasterVolume(0.5)

	deadline := time.Now().Add(5 * time.Second)
	for h.Blocks() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h.Blocks() < 2 {
		t.Fatal("engine never rendered")
	}
}
