package effectchain

import "github.com/cwbudde/algo-pedalboard/dsp/effects/modulation"

func decodeChorus(p Params) modulation.ChorusParams {
	d := modulation.DefaultChorusParams()
	return modulation.ChorusParams{
		Rate:      p.GetNum("rate", d.Rate),
		Width:     p.GetNum("width", d.Width),
		Intensity: p.GetNum("intensity", d.Intensity),
		Tone:      p.GetNum("tone", d.Tone),
		Mode:      modulation.ParseChorusMode(p.GetStr("mode", d.Mode.String())),
	}
}

func decodeCE2(p Params) modulation.CE2Params {
	d := modulation.DefaultCE2Params()
	return modulation.CE2Params{
		Rate:  p.GetNum("rate", d.Rate),
		Depth: p.GetNum("depth", d.Depth),
		Level: p.GetNum("level", d.Level),
	}
}

func flangerDecoder(d modulation.FlangerParams) func(Params) modulation.FlangerParams {
	return func(p Params) modulation.FlangerParams {
		return modulation.FlangerParams{
			Rate:      p.GetNum("rate", d.Rate),
			Depth:     p.GetNum("depth", d.Depth),
			Manual:    p.GetNum("manual", d.Manual),
			Resonance: p.GetNum("resonance", d.Resonance),
		}
	}
}

func decodeTremolo(p Params) modulation.TremoloParams {
	d := modulation.DefaultTremoloParams()
	return modulation.TremoloParams{
		Rate:  p.GetNum("rate", d.Rate),
		Depth: p.GetNum("depth", d.Depth),
	}
}

func decodeWah(p Params) modulation.WahParams {
	d := modulation.DefaultWahParams()
	return modulation.WahParams{
		Rate:    p.GetNum("rate", d.Rate),
		MinFreq: p.GetNum("min_freq", d.MinFreq),
		MaxFreq: p.GetNum("max_freq", d.MaxFreq),
		Q:       p.GetNum("q", d.Q),
		Gain:    p.GetNum("gain", d.Gain),
	}
}
