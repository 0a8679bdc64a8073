package effectchain

import "github.com/cwbudde/algo-pedalboard/dsp/effects/distortion"

func decodeOverdrive(p Params) distortion.OverdriveParams {
	d := distortion.DefaultOverdriveParams()
	return distortion.OverdriveParams{
		Gain:  p.GetNum("gain", d.Gain),
		Tone:  p.GetNum("tone", d.Tone),
		Level: p.GetNum("level", d.Level),
	}
}

func decodeVintage(p Params) distortion.VintageParams {
	d := distortion.DefaultVintageParams()
	return distortion.VintageParams{
		Drive: p.GetNum("drive", d.Drive),
		Tone:  p.GetNum("tone", d.Tone),
		Level: p.GetNum("level", d.Level),
	}
}

func decodeDistortion(p Params) distortion.DistortionParams {
	d := distortion.DefaultDistortionParams()
	return distortion.DistortionParams{
		Drive: p.GetNum("drive", d.Drive),
		Level: p.GetNum("level", d.Level),
	}
}

func decodeFuzz(p Params) distortion.FuzzParams {
	d := distortion.DefaultFuzzParams()
	return distortion.FuzzParams{
		Gain: p.GetNum("gain", d.Gain),
		Mix:  p.GetNum("mix", d.Mix),
	}
}

func decodeCarmilla(p Params) distortion.CarmillaParams {
	d := distortion.DefaultCarmillaParams()
	return distortion.CarmillaParams{
		Gain:  p.GetNum("gain", d.Gain),
		Tone:  p.GetNum("tone", d.Tone),
		Level: p.GetNum("level", d.Level),
	}
}

func decodePureSky(p Params) distortion.PureSkyParams {
	d := distortion.DefaultPureSkyParams()
	return distortion.PureSkyParams{
		Gain:   p.GetNum("gain", d.Gain),
		Level:  p.GetNum("level", d.Level),
		Bass:   p.GetNum("bass", d.Bass),
		Treble: p.GetNum("treble", d.Treble),
	}
}
