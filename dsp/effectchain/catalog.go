package effectchain

import (
	"slices"

	"github.com/cwbudde/algo-pedalboard/dsp/effects/eq"
)

// Channel names.
const (
	Instrument = "instrument"
	Voice      = "voice"
)

// TunerEffect is the instrument effect the engine runs in place of the
// whole chain while it is enabled.
const TunerEffect = "afinador"

var instrumentOrder = []string{
	"compressor", "wahwah", "puresky", TunerEffect, "vintage_overdrive",
	"overdrive", "fuzz", "carmilla_distortion", "distortion", "equalizer",
	"chorus_ce2", "chorus", "boss_bf2_flanger", "ultra_flanger", "tremolo",
	"delay", "reverb", "caine_oldschool_reverb",
}

var voiceOrder = []string{
	"noise_reducer", "pop_click_suppressor", "vocal_compressor", "deesser",
	"vocal_equalizer", "pitch_correction", "pitch_shifter", "vocal_tremolo",
	"vocal_delay", "reverb_voz",
}

// DefaultOrder returns a fresh copy of the default render order of channel,
// or nil for an unknown channel.
func DefaultOrder(channel string) []string {
	switch channel {
	case Instrument:
		return slices.Clone(instrumentOrder)
	case Voice:
		return slices.Clone(voiceOrder)
	}
	return nil
}

// Channels lists the logical channels in mix order.
func Channels() []string { return []string{Instrument, Voice} }

func num(name string, lo, hi, def float64) ParamDef {
	return ParamDef{Name: name, Kind: KindContinuous, Min: lo, Max: hi, Default: def}
}

func enum(name, def string, options ...string) ParamDef {
	return ParamDef{Name: name, Kind: KindEnum, Options: options, DefaultOption: def}
}

func toggle(name string, def bool) ParamDef {
	d := ParamDef{Name: name, Kind: KindBool, Max: 1}
	if def {
		d.Default = 1
	}
	return d
}

func bandParams(bands []eq.Band) []ParamDef {
	out := make([]ParamDef, len(bands))
	for i, b := range bands {
		out[i] = num(b.Name, eq.MinGainDB, eq.MaxGainDB, 0)
	}
	return out
}

var catalog = []Descriptor{
	{Name: "overdrive", Title: "Overdrive", Params: []ParamDef{
		num("gain", 0, 10, 5), num("tone", 0, 10, 5), num("level", 0, 10, 7),
	}},
	{Name: "distortion", Title: "Distortion", Params: []ParamDef{
		num("drive", 0, 20, 10), num("level", 0, 10, 5),
	}},
	{Name: "fuzz", Title: "Fuzz", Params: []ParamDef{
		num("gain", 1, 50, 15), num("mix", 0, 1, 1),
	}},
	{Name: "vintage_overdrive", Title: "Vintage Overdrive", Params: []ParamDef{
		num("drive", 0, 10, 6), num("tone", 0, 10, 4), num("level", 0, 10, 8),
	}},
	{Name: "carmilla_distortion", Title: "Carmilla Distortion", Params: []ParamDef{
		num("gain", 1, 20, 12), num("tone", 0, 10, 6), num("level", 0, 10, 7),
	}},
	{Name: "puresky", Title: "Pure Sky", Params: []ParamDef{
		num("gain", 0, 1, 0.3), num("level", 0, 1, 0.7), num("bass", 0, 1, 0), num("treble", 0, 1, 0),
	}},
	{Name: "equalizer", Title: "Equalizer", Params: bandParams(eq.InstrumentBands)},
	{Name: "vocal_equalizer", Title: "Vocal Equalizer", Params: bandParams(eq.VocalBands)},
	{Name: "chorus", Title: "Chorus", Params: []ParamDef{
		num("rate", 0.1, 10, 2), num("width", 0.001, 0.01, 0.003), num("intensity", 0, 1, 0.7),
		num("tone", 0, 10, 5), enum("mode", "chorus", "chorus", "tri-chorus"),
	}},
	{Name: "chorus_ce2", Title: "CE-2 Chorus", Params: []ParamDef{
		num("rate", 0.1, 10, 4), num("depth", 0, 1, 0.75), num("level", 0, 2, 1),
	}},
	{Name: "boss_bf2_flanger", Title: "BF-2 Flanger", Params: []ParamDef{
		num("rate", 0.1, 10, 3), num("depth", 0, 1, 0.7), num("manual", 0, 1, 0.5), num("resonance", 0, 1, 0.4),
	}},
	{Name: "ultra_flanger", Title: "Ultra Flanger", Params: []ParamDef{
		num("rate", 0.1, 10, 2), num("depth", 0, 1, 0.8), num("resonance", 0, 1, 0.5), num("manual", 0, 1, 0.6),
	}},
	{Name: "tremolo", Title: "Tremolo", Params: []ParamDef{
		num("rate", 0.5, 20, 5), num("depth", 0, 1, 0.8),
	}},
	{Name: "vocal_tremolo", Title: "Vocal Tremolo", Params: []ParamDef{
		num("rate", 0.5, 20, 5), num("depth", 0, 1, 0.8),
	}},
	{Name: "wahwah", Title: "Wah-Wah", Params: []ParamDef{
		num("rate", 0.1, 10, 1.5), num("min_freq", 100, 1000, 400), num("max_freq", 1000, 5000, 2000),
		num("q", 0.5, 20, 5), num("gain", 0, 4, 1.5),
	}},
	{Name: "compressor", Title: "Compressor", Params: []ParamDef{
		num("threshold_db", -60, 0, -20), num("ratio", 1, 20, 4), num("attack_ms", 1, 100, 10),
		num("release_ms", 10, 1000, 200), num("level", 0, 10, 5), toggle("bright", false),
	}},
	{Name: "vocal_compressor", Title: "Vocal Compressor", Params: []ParamDef{
		num("threshold_db", -60, 0, -20), num("ratio", 1, 20, 4), num("attack_ms", 1, 100, 10),
		num("release_ms", 10, 1000, 200), num("level", 0, 10, 1),
	}},
	{Name: "deesser", Title: "De-Esser", Params: []ParamDef{
		num("frequency", 4000, 12000, 6000), num("threshold_db", -60, 0, -25), num("reduction", 0, 1, 0.6),
	}},
	{Name: "delay", Title: "Delay", Params: []ParamDef{
		num("time_ms", 10, 2000, 300), num("feedback", 0, 0.95, 0.4), num("mix", 0, 1, 0.3),
	}},
	{Name: "vocal_delay", Title: "Vocal Delay", Params: []ParamDef{
		num("time_ms", 50, 1500, 500), num("feedback", 0, 0.95, 0.6), num("mix", 0, 1, 0.7),
	}},
	{Name: "reverb", Title: "Reverb", Params: []ParamDef{
		num("mix", 0, 1, 0.3), num("size", 0, 1, 0.7), num("decay", 0, 1, 0.5), num("level", 0, 2, 1),
	}},
	{Name: "reverb_voz", Title: "Vocal Reverb", Params: []ParamDef{
		num("mix", 0, 1, 0.3), num("size", 0.1, 1, 0.7), num("decay", 0, 1, 0.5), num("predelay_ms", 0, 100, 10),
	}},
	{Name: "caine_oldschool_reverb", Title: "Caine Old School Reverb", Params: []ParamDef{
		enum("mode", "room", "room", "hall", "church"), num("decay", 0.1, 1.5, 0.7),
		num("mix", 0, 1, 0.5), num("tone", 0, 1, 0.5),
	}},
	{Name: TunerEffect, Title: "Tuner"},
	{Name: "pitch_shifter", Title: "Pitch Shifter", Params: []ParamDef{
		num("semitones", -12, 12, 0), num("mix", 0, 1, 0.5),
	}},
	{Name: "pitch_correction", Title: "Pitch Correction", Params: []ParamDef{
		num("tolerance", 0, 50, 20), num("speed", 0.1, 1, 0.8),
	}},
	{Name: "pop_click_suppressor", Title: "Pop/Click Suppressor", Params: []ParamDef{
		num("cutoff_hz", 40, 200, 120), num("click_threshold", 0.1, 1, 0.7),
	}},
	{Name: "noise_reducer", Title: "Noise Reducer", Params: []ParamDef{
		num("threshold", 0.001, 0.1, 0.02), num("reduction_db", 6, 60, 20),
	}},
}

// Describe returns the descriptor of the named effect.
func Describe(name string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Descriptors returns every known effect descriptor.
func Descriptors() []Descriptor { return slices.Clone(catalog) }
