package distortion

import "github.com/cwbudde/algo-pedalboard/dsp/core"

// DistortionParams holds drive (0..20) and level (0..10).
type DistortionParams struct {
	Drive float64
	Level float64
}

// DefaultDistortionParams returns drive 10, level 5.
func DefaultDistortionParams() DistortionParams {
	return DistortionParams{Drive: 10, Level: 5}
}

// Distortion is a hard clipper with a quadratic drive curve.
type Distortion struct {
	params DistortionParams
	pipe   Pipeline
}

// NewDistortion creates a distortion with default knobs.
func NewDistortion(sampleRate float64) (*Distortion, error) {
	if err := checkSampleRate("distortion", sampleRate); err != nil {
		return nil, err
	}

	d := &Distortion{pipe: newPipeline(Hard)}
	d.SetParams(DefaultDistortionParams())
	return d, nil
}

// SetParams applies p.
func (d *Distortion) SetParams(p DistortionParams) {
	d.params = p
	drive := core.Clamp(p.Drive, 0, 20)
	d.pipe.Drive = 1 + drive*drive/50
	d.pipe.Level = 0.1 + core.Clamp(p.Level, 0, 10)/10*1.5
}

// Params returns the last applied parameters.
func (d *Distortion) Params() DistortionParams { return d.params }

// ProcessInPlace clips buf in place.
func (d *Distortion) ProcessInPlace(buf []float64) { d.pipe.Process(buf) }

// Reset is a no-op; the distortion is memoryless.
func (d *Distortion) Reset() {}

// FuzzParams holds gain (1..50) and the wet share (0..1).
type FuzzParams struct {
	Gain float64
	Mix  float64
}

// DefaultFuzzParams returns gain 15, fully wet.
func DefaultFuzzParams() FuzzParams {
	return FuzzParams{Gain: 15, Mix: 1}
}

// Fuzz clips the amplified input and blends it with the dry signal.
type Fuzz struct {
	params FuzzParams
	pipe   Pipeline
}

// NewFuzz creates a fuzz with default knobs.
func NewFuzz(sampleRate float64) (*Fuzz, error) {
	if err := checkSampleRate("fuzz", sampleRate); err != nil {
		return nil, err
	}

	f := &Fuzz{pipe: newPipeline(Hard)}
	f.SetParams(DefaultFuzzParams())
	return f, nil
}

// SetParams applies p.
func (f *Fuzz) SetParams(p FuzzParams) {
	f.params = p
	f.pipe.Drive = core.Clamp(p.Gain, 1, 50)
	f.pipe.Mix = core.Clamp(p.Mix, 0, 1)
}

// Params returns the last applied parameters.
func (f *Fuzz) Params() FuzzParams { return f.params }

// ProcessInPlace fuzzes buf in place.
func (f *Fuzz) ProcessInPlace(buf []float64) { f.pipe.Process(buf) }

// Reset is a no-op; the fuzz is memoryless.
func (f *Fuzz) Reset() {}
