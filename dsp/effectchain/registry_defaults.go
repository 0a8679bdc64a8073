package effectchain

import (
	"github.com/cwbudde/algo-pedalboard/dsp/effects"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/distortion"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/dynamics"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/eq"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/modulation"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/reverb"
)

// register adds a typedRuntime factory for a unit with a typed parameter
// struct.
func register[P any, U unit[P]](r *Registry, name string, newFn func(Context) (U, error), decode func(Params) P) {
	r.MustRegister(name, func(ctx Context) (Runtime, error) {
		fx, err := newFn(ctx)
		if err != nil {
			return nil, err
		}

		return &typedRuntime[P]{fx: fx, decode: decode}, nil
	})
}

// atRate adapts a constructor that only needs the sample rate.
func atRate[U any](newFn func(sampleRate float64) (U, error)) func(Context) (U, error) {
	return func(ctx Context) (U, error) { return newFn(ctx.SampleRate) }
}

// DefaultRegistry returns a Registry pre-populated with every effect in
// the catalog.
//
//nolint:funlen
func DefaultRegistry() *Registry {
	r := NewRegistry()

	register(r, "overdrive", atRate(distortion.NewOverdrive), decodeOverdrive)
	register(r, "vintage_overdrive", atRate(distortion.NewVintage), decodeVintage)
	register(r, "distortion", atRate(distortion.NewDistortion), decodeDistortion)
	register(r, "fuzz", atRate(distortion.NewFuzz), decodeFuzz)
	register(r, "carmilla_distortion", atRate(distortion.NewCarmilla), decodeCarmilla)
	register(r, "puresky", atRate(distortion.NewPureSky), decodePureSky)

	register(r, "chorus", atRate(modulation.NewChorus), decodeChorus)
	register(r, "chorus_ce2", atRate(modulation.NewCE2), decodeCE2)
	register(r, "boss_bf2_flanger", atRate(modulation.NewBF2Flanger),
		flangerDecoder(modulation.DefaultBF2FlangerParams()))
	register(r, "ultra_flanger", atRate(modulation.NewUltraFlanger),
		flangerDecoder(modulation.DefaultUltraFlangerParams()))
	register(r, "tremolo", atRate(modulation.NewTremolo), decodeTremolo)
	register(r, "vocal_tremolo", atRate(modulation.NewTremolo), decodeTremolo)
	register(r, "wahwah", atRate(modulation.NewWahWah), decodeWah)

	register(r, "compressor", atRate(dynamics.NewCompressor),
		compressorDecoder(dynamics.DefaultCompressorParams()))
	register(r, "vocal_compressor", atRate(dynamics.NewVocalCompressor),
		compressorDecoder(dynamics.DefaultVocalCompressorParams()))
	register(r, "deesser", atRate(dynamics.NewDeEsser), decodeDeEsser)
	register(r, "noise_reducer", atRate(dynamics.NewNoiseReducer), decodeNoiseReducer)
	register(r, "pop_click_suppressor", atRate(dynamics.NewPopClickSuppressor), decodePopClick)

	register(r, "delay", atRate(effects.NewDelay), delayDecoder(effects.DefaultDelayParams()))
	register(r, "vocal_delay", atRate(effects.NewDelay), delayDecoder(effects.DefaultVocalDelayParams()))
	register(r, "reverb", atRate(reverb.NewReverb), decodeReverb)
	register(r, "reverb_voz", atRate(reverb.NewVocalReverb), decodeVocalReverb)
	register(r, "caine_oldschool_reverb", atRate(reverb.NewConvolution), decodeConvolution)

	register(r, "pitch_shifter", atRate(pitch.NewShifter), decodeShifter)
	register(r, "pitch_correction", atRate(pitch.NewCorrector), decodeCorrector)

	r.MustRegister(TunerEffect, func(ctx Context) (Runtime, error) {
		window := ctx.TunerWindow
		if window <= 0 {
			window = pitch.DefaultTunerWindow
		}
		fx, err := pitch.NewTuner(ctx.SampleRate, window, ctx.OnTuner)
		if err != nil {
			return nil, err
		}

		return &tunerRuntime{fx: fx}, nil
	})

	equalizer := func(bands []eq.Band) Factory {
		return func(ctx Context) (Runtime, error) {
			fx, err := eq.NewGraphic(ctx.SampleRate, bands)
			if err != nil {
				return nil, err
			}

			return &eqRuntime{fx: fx}, nil
		}
	}
	r.MustRegister("equalizer", equalizer(eq.InstrumentBands))
	r.MustRegister("vocal_equalizer", equalizer(eq.VocalBands))

	return r
}
