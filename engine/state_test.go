package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
)

func TestFullStateShape(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	s := e.FullState()

	for _, ch := range effectchain.Channels() {
		effects := s.Instrument
		if ch == effectchain.Voice {
			effects = s.Voice
		}
		if len(effects) != len(effectchain.DefaultOrder(ch)) {
			t.Fatalf("%s has %d effects", ch, len(effects))
		}
	}

	od := s.Instrument["overdrive"]
	if od.Enabled || od.Params["gain"] != 5.0 || od.Params["level"] != 7.0 {
		t.Fatalf("overdrive state = %+v", od)
	}
	if got := s.Instrument["caine_oldschool_reverb"].Params["mode"]; got != "room" {
		t.Fatalf("caine mode = %v", got)
	}
	if got := s.Instrument["compressor"].Params["bright"]; got != false {
		t.Fatalf("compressor bright = %v", got)
	}
	if s.MasterVolume.Params.Level != 1 {
		t.Fatalf("master level = %v", s.MasterVolume.Params.Level)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, key := range []string{`"master_volume":{"params":{"level":1}}`, `"input_enabled"`, `"chain_order"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("encoded state lacks %s", key)
		}
	}
}

func TestFullStateRoundTripIsFixedPoint(t *testing.T) {
	t.Parallel()

	src := newTestEngine(t, WithInputChannels(2))
	in := effectchain.Instrument
	_ = src.ToggleEffect(in, "fuzz", true)
	_ = src.SetParam(in, "fuzz", "gain", effectchain.Number(33))
	_ = src.SetParam(in, "chorus", "mode", effectchain.Text("tri-chorus"))
	_ = src.SetParam(in, "compressor", "bright", effectchain.Bool(true))
	_ = src.ToggleEffect(effectchain.Voice, "reverb_voz", true)
	_ = src.SetChainOrder(effectchain.Voice, []string{"reverb_voz", "deesser"})
	_ = src.SetMasterVolume(1.25)
	_ = src.ToggleInputChannel(effectchain.Voice, false)
	_ = src.SetChannelMapping(1, 0)

	want := src.FullState()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	dst := newTestEngine(t, WithInputChannels(2))
	issues, err := dst.LoadFullState(decoded)
	if err != nil || len(issues) != 0 {
		t.Fatalf("LoadFullState: %v, %v", issues, err)
	}

	if got := dst.FullState(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip changed state:\n got  %+v\n want %+v", got, want)
	}

	render(dst, 64, make([]float64, 64), make([]float64, 64))
	if ch := dst.rt.chains[roleVoice]; !slices.Equal(ch.Order(), []string{"reverb_voz", "deesser"}) || !ch.Enabled("reverb_voz") {
		t.Fatalf("render side did not receive the state: %v", ch.Order())
	}
	if dst.rt.master != 1.25 || dst.rt.inputs[roleVoice] {
		t.Fatalf("render master %v inputs %v", dst.rt.master, dst.rt.inputs)
	}
}

func TestLoadFullStateReportsIssues(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_ = e.SetParam(effectchain.Instrument, "delay", "mix", effectchain.Number(0.9))

	s := State{
		Instrument: map[string]EffectState{
			"overdrive": {Enabled: true, Params: map[string]any{
				"gain":  "loud",
				"tone":  2.0,
				"sauce": 1.0,
			}},
			"chorus":  {Params: map[string]any{"mode": "quad"}},
			"phaser":  {Enabled: true},
			"fuzz":    {Enabled: true, Params: map[string]any{"gain": 20}},
			"tremolo": {Params: map[string]any{}},
		},
		ChainOrder: &OrderState{Instrument: []string{"fuzz", "bogus", "fuzz", "overdrive"}},
	}

	issues, err := e.LoadFullState(s)
	if err != nil {
		t.Fatalf("LoadFullState: %v", err)
	}

	var got []string
	for _, is := range issues {
		got = append(got, is.String())
	}
	slices.Sort(got)
	want := []string{
		"instrument/bogus: unknown effect in chain order",
		"instrument/chorus.mode: invalid parameter value: mode=\"quad\"",
		"instrument/fuzz: duplicate in chain order",
		"instrument/overdrive.gain: want a number, got string",
		"instrument/overdrive.sauce: unknown parameter",
		"instrument/phaser: unknown effect",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("issues =\n%s", strings.Join(got, "\n"))
	}

	in := effectchain.Instrument
	check := func(effect, key string, want effectchain.Value) {
		t.Helper()
		v, err := e.Param(in, effect, key)
		if err != nil || v != want {
			t.Fatalf("%s.%s = %v, %v; want %v", effect, key, v, err, want)
		}
	}
	check("overdrive", "gain", effectchain.Number(5))
	check("overdrive", "tone", effectchain.Number(2))
	check("chorus", "mode", effectchain.Text("chorus"))
	check("fuzz", "gain", effectchain.Number(20))
	check("delay", "mix", effectchain.Number(0.9))

	if !e.IsEffectEnabled(in, "overdrive") || !e.IsEffectEnabled(in, "fuzz") {
		t.Fatal("enabled flags not applied")
	}
	if order, _ := e.ChainOrder(in); !slices.Equal(order, []string{"fuzz", "overdrive"}) {
		t.Fatalf("filtered order = %v", order)
	}
	if order, _ := e.ChainOrder(effectchain.Voice); !slices.Equal(order, effectchain.DefaultOrder(effectchain.Voice)) {
		t.Fatalf("voice order changed to %v", order)
	}
	if e.MasterVolume() != DefaultMasterVolume {
		t.Fatalf("missing master section gave %v", e.MasterVolume())
	}
}

func TestPresetFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lead.json")

	src := newTestEngine(t)
	_ = src.ToggleEffect(effectchain.Instrument, "distortion", true)
	_ = src.SetParam(effectchain.Instrument, "distortion", "drive", effectchain.Number(17))
	if err := src.SavePreset(path); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	dst := newTestEngine(t)
	issues, err := dst.LoadPreset(path)
	if err != nil || len(issues) != 0 {
		t.Fatalf("LoadPreset: %v, %v", issues, err)
	}
	if v, _ := dst.Param(effectchain.Instrument, "distortion", "drive"); v.Num != 17 {
		t.Fatalf("drive = %v", v)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := dst.LoadPreset(bad); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := dst.LoadPreset(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
}
