package engine

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/engine/track"
	"github.com/cwbudde/algo-pedalboard/internal/testutil"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	if got := e.MasterVolume(); got != DefaultMasterVolume {
		t.Fatalf("MasterVolume() = %v", got)
	}
	if got := e.TrackVolume(); got != DefaultTrackVolume {
		t.Fatalf("TrackVolume() = %v", got)
	}
	if got := e.ChannelMapping(); got != (Mapping{Instrument: 0, Voice: 1}) {
		t.Fatalf("ChannelMapping() = %+v", got)
	}

	for _, ch := range effectchain.Channels() {
		order, err := e.ChainOrder(ch)
		if err != nil {
			t.Fatalf("ChainOrder(%s): %v", ch, err)
		}
		if !slices.Equal(order, effectchain.DefaultOrder(ch)) {
			t.Fatalf("%s order = %v", ch, order)
		}
		for _, name := range order {
			if e.IsEffectEnabled(ch, name) {
				t.Fatalf("%s/%s enabled by default", ch, name)
			}
		}
		if !e.InputEnabled(ch) {
			t.Fatalf("%s input muted by default", ch)
		}
	}

	if info := e.PlaybackInfo(); info != (PlaybackInfo{}) {
		t.Fatalf("PlaybackInfo() = %+v", info)
	}
	if _, ok := e.TunerReading(); ok {
		t.Fatal("tuner reading before any analysis")
	}
}

func TestBypassIsIdentity(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	x := testutil.DeterministicNoise(11, 0.5, 4096)
	want := testutil.Float32(x)

	outs := render(e, 512, x)
	for c, out := range outs {
		for i, v := range out {
			if float32(v) != want[i] {
				t.Fatalf("channel %d sample %d = %v, want %v", c, i, v, want[i])
			}
		}
	}
}

func TestDelayImpulseThroughEngine(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	for key, v := range map[string]float64{"time_ms": 100, "feedback": 0, "mix": 1} {
		if err := e.SetParam(effectchain.Instrument, "delay", key, effectchain.Number(v)); err != nil {
			t.Fatalf("SetParam(%s): %v", key, err)
		}
	}
	if err := e.ToggleEffect(effectchain.Instrument, "delay", true); err != nil {
		t.Fatalf("ToggleEffect: %v", err)
	}

	out := render(e, 512, testutil.Impulse(10000, 0))[0]
	for i, v := range out {
		want := 0.0
		if i == 4800 {
			want = 1
		}
		if math.Abs(v-want) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestMasterVolumeAndInputMute(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	x := testutil.DC(0.5, 256)

	_ = e.SetMasterVolume(0.5)
	testutil.RequireSliceNearlyEqual(t, render(e, 256, x)[0], testutil.DC(0.25, 256), 0)

	_ = e.SetMasterVolume(9)
	if got := e.MasterVolume(); got != MaxMasterVolume {
		t.Fatalf("MasterVolume() = %v, want clamp to %v", got, MaxMasterVolume)
	}
	testutil.RequireSliceNearlyEqual(t, render(e, 256, x)[1], testutil.DC(1, 256), 0)

	_ = e.ToggleInputChannel(effectchain.Instrument, false)
	testutil.RequireSliceNearlyEqual(t, render(e, 256, x)[0], make([]float64, 256), 0)
}

func TestVoiceRoleIsMixed(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithInputChannels(2))
	out := render(e, 128, testutil.DC(0.25, 128), testutil.DC(0.125, 128))[0]
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(0.375, 128), 0)

	if err := e.SetChannelMapping(1, 0); err != nil {
		t.Fatalf("SetChannelMapping: %v", err)
	}
	_ = e.ToggleInputChannel(effectchain.Voice, false)
	out = render(e, 128, testutil.DC(0.25, 128), testutil.DC(0.125, 128))[0]
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(0.125, 128), 0)
}

func TestChannelMappingCollision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inputs     int
		instrument int
		voice      int
		want       Mapping
	}{
		{"distinct", 2, 1, 0, Mapping{1, 0}},
		{"both on first", 2, 0, 0, Mapping{0, 1}},
		{"both on last", 2, 1, 1, Mapping{1, 0}},
		{"mono device", 1, 0, 0, Mapping{0, 1}},
		{"past device", 4, 5, 5, Mapping{5, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, WithInputChannels(tt.inputs))
			if err := e.SetChannelMapping(tt.instrument, tt.voice); err != nil {
				t.Fatalf("SetChannelMapping: %v", err)
			}
			if got := e.ChannelMapping(); got != tt.want {
				t.Fatalf("ChannelMapping() = %+v, want %+v", got, tt.want)
			}
			if got := e.ChannelMapping(); got.Instrument == got.Voice {
				t.Fatal("roles share an input")
			}
		})
	}

	e := newTestEngine(t)
	if err := e.SetChannelMapping(-1, 0); err == nil {
		t.Fatal("expected error for a negative index")
	}
}

func TestControlErrors(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	in := effectchain.Instrument

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown channel", e.ToggleEffect("bass", "overdrive", true), ErrUnknownChannel},
		{"unknown effect", e.ToggleEffect(in, "phaser", true), ErrUnknownEffect},
		{"effect of the other channel", e.ToggleEffect(effectchain.Voice, "overdrive", true), ErrUnknownEffect},
		{"unknown param", e.SetParam(in, "overdrive", "fuzziness", effectchain.Number(1)), effectchain.ErrUnknownParam},
		{"NaN value", e.SetParam(in, "overdrive", "gain", effectchain.Number(math.NaN())), effectchain.ErrInvalidValue},
		{"bad option", e.SetParam(in, "chorus", "mode", effectchain.Text("quad")), effectchain.ErrInvalidValue},
		{"order with unknown", e.SetChainOrder(in, []string{"delay", "deesser"}), ErrUnknownEffect},
		{"order of unknown channel", e.SetChainOrder("bass", nil), ErrUnknownChannel},
		{"play without track", e.TogglePlayback(), ErrNoTrack},
		{"seek without track", e.SetPlaybackPosition(0.5), ErrNoTrack},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	if err := e.SetChainOrder(in, []string{"delay", "delay"}); err == nil {
		t.Error("duplicate order accepted")
	}
	if v, _ := e.Param(in, "overdrive", "gain"); v.Num != 5 {
		t.Fatalf("rejected value reached the mirror: %v", v)
	}
	if e.Rejected() != 0 {
		t.Fatalf("validation failures counted as queue drops: %d", e.Rejected())
	}
}

func TestQueueFullLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithQueueCapacity(2))

	if err := e.SetMasterVolume(0.5); err != nil {
		t.Fatalf("first command: %v", err)
	}
	if err := e.SetMasterVolume(0.6); err != nil {
		t.Fatalf("second command: %v", err)
	}
	if err := e.SetMasterVolume(0.7); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("third command error = %v, want ErrQueueFull", err)
	}
	if got := e.MasterVolume(); got != 0.6 {
		t.Fatalf("MasterVolume() = %v, want 0.6", got)
	}
	if e.Rejected() != 1 {
		t.Fatalf("Rejected() = %d, want 1", e.Rejected())
	}

	out := render(e, 64, testutil.DC(0.5, 64))[0]
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(0.3, 64), 1e-7)

	if err := e.SetMasterVolume(0.7); err != nil {
		t.Fatalf("command after drain: %v", err)
	}
}

func TestCommandsApplyInOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	in := effectchain.Instrument

	_ = e.SetChainOrder(in, []string{"delay", "overdrive"})
	_ = e.ToggleEffect(in, "overdrive", true)
	_ = e.SetParam(in, "overdrive", "gain", effectchain.Number(8))
	_ = e.ToggleEffect(in, "overdrive", false)

	got, _ := e.ChainOrder(in)
	if !slices.Equal(got, []string{"delay", "overdrive"}) {
		t.Fatalf("ChainOrder() = %v", got)
	}

	render(e, 64, make([]float64, 64))

	ch := e.rt.chains[roleInstrument]
	if !slices.Equal(ch.Order(), got) {
		t.Fatalf("render order = %v", ch.Order())
	}
	if ch.Enabled("overdrive") {
		t.Fatal("last toggle did not win")
	}
	if v, _ := ch.Param("overdrive", "gain"); v.Num != 8 {
		t.Fatalf("render-side gain = %v", v)
	}
}

func TestPlaybackMixesAndStopsAtEnd(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = 0.5
	}
	if err := e.LoadTrack(track.FromSamples("loop", samples, 48000)); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	_ = e.SetTrackVolume(1)
	if err := e.TogglePlayback(); err != nil {
		t.Fatalf("TogglePlayback: %v", err)
	}

	out := render(e, 512, make([]float64, 512))[0]
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(0.5, 512), 0)

	info := e.PlaybackInfo()
	if info.State != Playing || math.Abs(info.Position-512.0/48000) > 1e-12 {
		t.Fatalf("PlaybackInfo() = %+v", info)
	}
	if math.Abs(info.Duration-1000.0/48000) > 1e-12 {
		t.Fatalf("Duration = %v", info.Duration)
	}

	out = render(e, 512, make([]float64, 512))[0]
	testutil.RequireSliceNearlyEqual(t, out[:488], testutil.DC(0.5, 488), 0)
	testutil.RequireSliceNearlyEqual(t, out[488:], make([]float64, 24), 0)

	if info := e.PlaybackInfo(); info.State != Stopped || info.Position != 0 {
		t.Fatalf("after end PlaybackInfo() = %+v", info)
	}
}

func TestPlaybackPauseAndSeek(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_ = e.LoadTrack(track.FromSamples("t", make([]float32, 4800), 48000))

	_ = e.TogglePlayback()
	_ = e.TogglePlayback()
	render(e, 256, make([]float64, 256))
	if info := e.PlaybackInfo(); info.State != Paused || info.Position != 0 {
		t.Fatalf("paused PlaybackInfo() = %+v", info)
	}

	_ = e.SetPlaybackPosition(0.5)
	render(e, 256, make([]float64, 256))
	if info := e.PlaybackInfo(); math.Abs(info.Position-0.05) > 1e-12 {
		t.Fatalf("seek position = %v, want 0.05", info.Position)
	}

	_ = e.SetPlaybackPosition(7)
	_ = e.StopPlayback()
	render(e, 256, make([]float64, 256))
	if info := e.PlaybackInfo(); info.State != Stopped || info.Position != 0 {
		t.Fatalf("stopped PlaybackInfo() = %+v", info)
	}
}

func TestLoadTrackResamplesToEngineRate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src := testutil.Float32(testutil.DeterministicSine(220, 24000, 0.5, 2400))
	if err := e.LoadTrack(track.FromSamples("half rate", src, 24000)); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}

	got := e.Track()
	if got.SampleRate != 48000 {
		t.Fatalf("SampleRate = %d", got.SampleRate)
	}
	if n := got.Len(); n < 4700 || n > 4900 {
		t.Fatalf("resampled length = %d, want about 4800", n)
	}

	if err := e.LoadTrack(track.FromSamples("empty", nil, 48000)); !errors.Is(err, track.ErrEmpty) {
		t.Fatalf("empty track error = %v", err)
	}
}

func TestTunerThroughEngine(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithTunerWindow(4096))
	_ = e.ToggleEffect(effectchain.Instrument, effectchain.TunerEffect, true)

	out := render(e, 512, testutil.DeterministicSine(440, 48000, 0.5, 4096))[0]
	testutil.RequireBounded(t, out, 0)

	r, ok := e.TunerReading()
	if !ok || !r.Valid || r.Name != "A" || r.Octave != 4 {
		t.Fatalf("TunerReading() = %v, %v", r, ok)
	}

	render(e, 512, make([]float64, 4096))
	r, ok = e.TunerReading()
	if !ok || r.Valid {
		t.Fatalf("silent window reading = %v, %v", r, ok)
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"compressor", "overdrive", "chorus", "equalizer", "delay", "reverb"} {
		_ = e.ToggleEffect(effectchain.Instrument, name, true)
	}
	_ = e.ToggleEffect(effectchain.Voice, "vocal_compressor", true)
	_ = e.LoadTrack(track.FromSamples("t", make([]float32, 48000), 48000))
	_ = e.TogglePlayback()

	in := [][]float32{testutil.Float32(testutil.DeterministicSine(220, 48000, 0.5, 512))}
	out := [][]float32{make([]float32, 512), make([]float32, 512)}
	e.Render(in, out)

	if allocs := testing.AllocsPerRun(100, func() { e.Render(in, out) }); allocs != 0 {
		t.Fatalf("Render allocated %v times per block", allocs)
	}
}

func TestRenderReverbsAlternatingBlockLengthsDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"reverb", "caine_oldschool_reverb"} {
		if err := e.ToggleEffect(effectchain.Instrument, name, true); err != nil {
			t.Fatalf("ToggleEffect(%s): %v", name, err)
		}
	}
	if err := e.ToggleEffect(effectchain.Voice, "reverb_voz", true); err != nil {
		t.Fatalf("ToggleEffect(reverb_voz): %v", err)
	}

	sine := testutil.Float32(testutil.DeterministicSine(220, 48000, 0.5, 512))
	in := [][]float32{sine, sine}
	out := [][]float32{make([]float32, 512), make([]float32, 512)}
	e.Render(in, out)

	type frame struct{ in, out [][]float32 }
	var frames []frame
	for _, n := range []int{512, 488, 300, 212} {
		frames = append(frames, frame{
			in:  [][]float32{sine[:n], sine[:n]},
			out: [][]float32{out[0][:n], out[1][:n]},
		})
	}
	i := 0
	allocs := testing.AllocsPerRun(100, func() {
		f := frames[i%len(frames)]
		i++
		e.Render(f.in, f.out)
	})
	if allocs != 0 {
		t.Fatalf("Render allocated %v times per block", allocs)
	}
}

func TestRenderReverbTailIndependentOfBlockSplit(t *testing.T) {
	input := testutil.DeterministicNoise(4, 0.5, 4096)

	run := func(blockSize int) []float64 {
		e := newTestEngine(t)
		for _, name := range []string{"reverb", "caine_oldschool_reverb"} {
			if err := e.ToggleEffect(effectchain.Instrument, name, true); err != nil {
				t.Fatalf("ToggleEffect(%s): %v", name, err)
			}
		}
		return render(e, blockSize, input)[0]
	}

	want := run(512)
	for _, blockSize := range []int{256, 300, 488} {
		testutil.RequireSliceNearlyEqual(t, run(blockSize), want, 1e-6)
	}
}

func BenchmarkRender(b *testing.B) {
	e := newTestEngine(b)
	for _, name := range []string{"overdrive", "chorus", "delay", "reverb", "equalizer"} {
		_ = e.ToggleEffect(effectchain.Instrument, name, true)
	}
	in := [][]float32{testutil.Float32(testutil.DeterministicSine(220, 48000, 0.5, 512))}
	out := [][]float32{make([]float32, 512), make([]float32, 512)}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		e.Render(in, out)
	}
}
