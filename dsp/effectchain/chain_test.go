package effectchain

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"
	"github.com/cwbudde/algo-pedalboard/internal/testutil"
)

func TestChainStartsDisabledAndPassesThrough(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	if got := c.Order(); !slices.Equal(got, []string{"gain", "add", "stub"}) {
		t.Fatalf("Order() = %v", got)
	}

	x := testutil.DeterministicNoise(1, 0.5, 64)
	want := slices.Clone(x)
	c.Render(x)
	testutil.RequireSliceNearlyEqual(t, x, want, 0)

	if calls := c.Runtime("stub").(*stubRuntime).processCalls; calls != 0 {
		t.Fatalf("disabled stub processed %d blocks", calls)
	}
}

func TestChainRendersInOrder(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	_ = c.SetEnabled("gain", true)
	_ = c.SetEnabled("add", true)

	block := []float64{1, 1}
	c.Render(block)
	testutil.RequireSliceNearlyEqual(t, block, []float64{2.5, 2.5}, 0)

	if err := c.SetOrder([]string{"add", "gain"}); err != nil {
		t.Fatalf("SetOrder: %v", err)
	}
	block = []float64{1, 1}
	c.Render(block)
	testutil.RequireSliceNearlyEqual(t, block, []float64{3, 3}, 0)
}

func TestChainSetParamReconfiguresBeforeNextRender(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	_ = c.SetEnabled("gain", true)

	if err := c.SetParam("gain", "gain", Number(3)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	v, err := c.Param("gain", "gain")
	if err != nil || v.Num != 3 {
		t.Fatalf("Param = %v, %v", v, err)
	}

	block := []float64{0.25}
	c.Render(block)
	if block[0] != 0.75 {
		t.Fatalf("rendered %v, want 0.75", block[0])
	}

	stub := c.Runtime("stub").(*stubRuntime)
	before := stub.configureCalls
	_ = c.SetEnabled("stub", true)
	_ = c.SetParam("stub", "mode", Text("b"))
	c.Render(block)
	c.Render(block)
	if stub.configureCalls != before+1 {
		t.Fatalf("configure calls = %d, want %d", stub.configureCalls, before+1)
	}
	if got := stub.lastParams.GetStr("mode", ""); got != "b" {
		t.Fatalf("stub saw mode %q", got)
	}
}

func TestChainErrors(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"SetParam unknown effect", c.SetParam("nope", "gain", Number(1)), ErrUnknownEffect},
		{"SetParam unknown key", c.SetParam("gain", "nope", Number(1)), ErrUnknownParam},
		{"SetParam NaN", c.SetParam("gain", "gain", Number(math.NaN())), ErrInvalidValue},
		{"SetParam bad option", c.SetParam("stub", "mode", Text("z")), ErrInvalidValue},
		{"SetEnabled unknown", c.SetEnabled("nope", true), ErrUnknownEffect},
		{"SetOrder unknown", c.SetOrder([]string{"gain", "nope"}), ErrUnknownEffect},
		{"SetOrder duplicate", c.SetOrder([]string{"gain", "gain"}), ErrDuplicateEffect},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	if got := c.Order(); !slices.Equal(got, []string{"gain", "add", "stub"}) {
		t.Fatalf("rejected orders changed Order() to %v", got)
	}
	if v, _ := c.Param("gain", "gain"); v.Num != 2 {
		t.Fatalf("rejected value was stored: %v", v)
	}
}

func TestChainRemovedFromOrderNeverRuns(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	stub := c.Runtime("stub").(*stubRuntime)
	_ = c.SetEnabled("stub", true)
	resets := stub.resetCalls

	if err := c.SetOrder([]string{"gain"}); err != nil {
		t.Fatalf("SetOrder: %v", err)
	}
	if stub.resetCalls != resets+1 {
		t.Fatal("dropped instance was not reset")
	}

	c.Render(make([]float64, 8))
	if stub.processCalls != 0 {
		t.Fatal("instance outside the order was processed")
	}
	if !c.Has("stub") || !c.Enabled("stub") {
		t.Fatal("instance dropped from the order lost its state")
	}
}

func TestChainEnableResetsState(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	stub := c.Runtime("stub").(*stubRuntime)

	_ = c.SetEnabled("stub", true)
	_ = c.SetEnabled("stub", true)
	_ = c.SetEnabled("stub", false)
	_ = c.SetEnabled("stub", true)

	if stub.resetCalls != 2 {
		t.Fatalf("reset calls = %d, want 2", stub.resetCalls)
	}
}

func TestChainConfigureErrorIsAbsorbed(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	stub := c.Runtime("stub").(*stubRuntime)
	stub.configureErr = errors.New("boom")
	_ = c.SetEnabled("stub", true)
	_ = c.SetParam("stub", "on", Bool(true))

	c.Render(make([]float64, 4))
	c.Render(make([]float64, 4))
	if stub.processCalls != 2 {
		t.Fatalf("process calls = %d, want 2", stub.processCalls)
	}
}

func TestChainSolo(t *testing.T) {
	t.Parallel()

	c := newTestChain(t)
	block := []float64{1}

	if c.Solo("gain", block) {
		t.Fatal("Solo ran a disabled instance")
	}
	_ = c.SetEnabled("gain", true)
	_ = c.SetEnabled("add", true)
	if !c.Solo("gain", block) || block[0] != 2 {
		t.Fatalf("Solo = %v, want only the gain applied", block[0])
	}
	if c.Solo("nope", block) {
		t.Fatal("Solo ran an unknown instance")
	}
}

func TestNewChainRejectsUnknownAndDuplicate(t *testing.T) {
	t.Parallel()

	_, err := New(Context{SampleRate: 48000}, testRegistry(), []Descriptor{{Name: "missing"}})
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("unknown effect error = %v", err)
	}

	_, err = New(Context{SampleRate: 48000}, testRegistry(), []Descriptor{{Name: "gain"}, {Name: "gain"}})
	if !errors.Is(err, ErrDuplicateEffect) {
		t.Fatalf("duplicate error = %v", err)
	}

	if _, err := NewChannel(Context{SampleRate: 48000}, DefaultRegistry(), "bass"); err == nil {
		t.Fatal("expected unknown channel error")
	}
}

func enableAll(t *testing.T, c *Chain, skip ...string) {
	t.Helper()

	for _, name := range c.Names() {
		if slices.Contains(skip, name) {
			continue
		}
		if err := c.SetEnabled(name, true); err != nil {
			t.Fatalf("SetEnabled(%q): %v", name, err)
		}
	}
}

func TestChannelChainIsDeterministicAndBounded(t *testing.T) {
	t.Parallel()

	for _, ch := range Channels() {
		t.Run(ch, func(t *testing.T) {
			t.Parallel()

			render := func() []float64 {
				ctx := Context{SampleRate: 48000, BlockSize: 256}
				c, err := NewChannel(ctx, DefaultRegistry(), ch)
				if err != nil {
					t.Fatalf("NewChannel: %v", err)
				}
				enableAll(t, c, TunerEffect)

				x := testutil.DeterministicNoise(7, 1, 256*8)
				testutil.InBlocks(x, 256, c.Render)
				return x
			}

			a := render()
			b := render()
			testutil.RequireBounded(t, a, 1)
			testutil.RequireSliceNearlyEqual(t, a, b, 0)
		})
	}
}

func TestTunerSoloPublishes(t *testing.T) {
	t.Parallel()

	var got []pitch.Reading
	ctx := Context{
		SampleRate:  48000,
		BlockSize:   512,
		TunerWindow: 4096,
		OnTuner:     func(r pitch.Reading) { got = append(got, r) },
	}
	c, err := NewChannel(ctx, DefaultRegistry(), Instrument)
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	_ = c.SetEnabled(TunerEffect, true)

	x := testutil.DeterministicSine(440, 48000, 0.5, 4096)
	testutil.InBlocks(x, 512, func(b []float64) { c.Solo(TunerEffect, b) })

	if len(got) != 1 || !got[0].Valid || got[0].Name != "A" || got[0].Octave != 4 {
		t.Fatalf("tuner readings = %v", got)
	}
	testutil.RequireBounded(t, x, 0)
}

func BenchmarkChainRender(b *testing.B) {
	c, err := NewChannel(Context{SampleRate: 48000, BlockSize: 256}, DefaultRegistry(), Instrument)
	if err != nil {
		b.Fatalf("NewChannel: %v", err)
	}
	for _, name := range []string{"overdrive", "chorus", "delay", "reverb", "equalizer"} {
		_ = c.SetEnabled(name, true)
	}
	block := testutil.DeterministicSine(220, 48000, 0.5, 256)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		c.Render(block)
	}
}
