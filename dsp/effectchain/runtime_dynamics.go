package effectchain

import "github.com/cwbudde/algo-pedalboard/dsp/effects/dynamics"

func compressorDecoder(d dynamics.CompressorParams) func(Params) dynamics.CompressorParams {
	return func(p Params) dynamics.CompressorParams {
		return dynamics.CompressorParams{
			ThresholdDB: p.GetNum("threshold_db", d.ThresholdDB),
			Ratio:       p.GetNum("ratio", d.Ratio),
			AttackMs:    p.GetNum("attack_ms", d.AttackMs),
			ReleaseMs:   p.GetNum("release_ms", d.ReleaseMs),
			Level:       p.GetNum("level", d.Level),
			Bright:      p.GetBool("bright", d.Bright),
		}
	}
}

func decodeDeEsser(p Params) dynamics.DeEsserParams {
	d := dynamics.DefaultDeEsserParams()
	return dynamics.DeEsserParams{
		Frequency:   p.GetNum("frequency", d.Frequency),
		ThresholdDB: p.GetNum("threshold_db", d.ThresholdDB),
		Reduction:   p.GetNum("reduction", d.Reduction),
	}
}

func decodeNoiseReducer(p Params) dynamics.NoiseReducerParams {
	d := dynamics.DefaultNoiseReducerParams()
	return dynamics.NoiseReducerParams{
		Threshold:   p.GetNum("threshold", d.Threshold),
		ReductionDB: p.GetNum("reduction_db", d.ReductionDB),
	}
}

func decodePopClick(p Params) dynamics.PopClickParams {
	d := dynamics.DefaultPopClickParams()
	return dynamics.PopClickParams{
		CutoffHz:       p.GetNum("cutoff_hz", d.CutoffHz),
		ClickThreshold: p.GetNum("click_threshold", d.ClickThreshold),
	}
}
