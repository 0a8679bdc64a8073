package effectchain

import (
	"github.com/cwbudde/algo-pedalboard/dsp/effects"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/eq"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/reverb"
)

func delayDecoder(d effects.DelayParams) func(Params) effects.DelayParams {
	return func(p Params) effects.DelayParams {
		return effects.DelayParams{
			TimeMs:   p.GetNum("time_ms", d.TimeMs),
			Feedback: p.GetNum("feedback", d.Feedback),
			Mix:      p.GetNum("mix", d.Mix),
		}
	}
}

func decodeReverb(p Params) reverb.ReverbParams {
	d := reverb.DefaultReverbParams()
	return reverb.ReverbParams{
		Mix:   p.GetNum("mix", d.Mix),
		Size:  p.GetNum("size", d.Size),
		Decay: p.GetNum("decay", d.Decay),
		Level: p.GetNum("level", d.Level),
	}
}

func decodeVocalReverb(p Params) reverb.VocalReverbParams {
	d := reverb.DefaultVocalReverbParams()
	return reverb.VocalReverbParams{
		Mix:        p.GetNum("mix", d.Mix),
		Size:       p.GetNum("size", d.Size),
		Decay:      p.GetNum("decay", d.Decay),
		PredelayMs: p.GetNum("predelay_ms", d.PredelayMs),
	}
}

func decodeConvolution(p Params) reverb.ConvolutionParams {
	d := reverb.DefaultConvolutionParams()
	return reverb.ConvolutionParams{
		Mode:  reverb.ParseRoomMode(p.GetStr("mode", d.Mode.String())),
		Decay: p.GetNum("decay", d.Decay),
		Mix:   p.GetNum("mix", d.Mix),
		Tone:  p.GetNum("tone", d.Tone),
	}
}

func decodeShifter(p Params) pitch.ShifterParams {
	d := pitch.DefaultShifterParams()
	return pitch.ShifterParams{
		Semitones: p.GetNum("semitones", d.Semitones),
		Mix:       p.GetNum("mix", d.Mix),
	}
}

func decodeCorrector(p Params) pitch.CorrectorParams {
	d := pitch.DefaultCorrectorParams()
	return pitch.CorrectorParams{
		Tolerance: p.GetNum("tolerance", d.Tolerance),
		Speed:     p.GetNum("speed", d.Speed),
	}
}

// eqRuntime maps band_* keys onto the graphic equalizer.
type eqRuntime struct {
	fx *eq.Graphic
}

func (r *eqRuntime) Configure(_ Context, p Params) error {
	for i, b := range r.fx.Bands() {
		r.fx.SetGain(i, p.GetNum(b.Name, 0))
	}
	return nil
}

func (r *eqRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }

func (r *eqRuntime) Reset() { r.fx.Reset() }

// tunerRuntime has no parameters. Processing analyzes and silences.
type tunerRuntime struct {
	fx *pitch.Tuner
}

func (r *tunerRuntime) Configure(_ Context, _ Params) error { return nil }

func (r *tunerRuntime) Process(block []float64) { r.fx.ProcessInPlace(block) }

func (r *tunerRuntime) Reset() { r.fx.Reset() }
