package distortion

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/onepole"
)

const (
	overdriveHighpassHz = 120.0
	overdriveToneMinHz  = 700.0
	overdriveToneMaxHz  = 12000.0

	// Tone settings at or above this cutoff bypass the low-pass.
	overdriveToneBypassHz = 11900.0
)

// OverdriveParams holds the knob positions, each 0..10.
type OverdriveParams struct {
	Gain  float64
	Tone  float64
	Level float64
}

// DefaultOverdriveParams returns gain 5, tone 5, level 7.
func DefaultOverdriveParams() OverdriveParams {
	return OverdriveParams{Gain: 5, Tone: 5, Level: 7}
}

// Overdrive high-passes the input at 120 Hz, drives a tanh stage and
// rolls off the top with an exponentially swept low-pass.
type Overdrive struct {
	params OverdriveParams

	hp   *onepole.Highpass
	lp   *onepole.Lowpass
	tone []Stage
	pipe Pipeline
}

// NewOverdrive creates an overdrive with default knobs.
func NewOverdrive(sampleRate float64) (*Overdrive, error) {
	if err := checkSampleRate("overdrive", sampleRate); err != nil {
		return nil, err
	}

	o := &Overdrive{
		hp:   onepole.NewHighpass(overdriveHighpassHz, sampleRate),
		lp:   onepole.NewLowpass(overdriveToneMaxHz, sampleRate),
		pipe: newPipeline(Soft),
	}
	o.tone = []Stage{o.lp}
	o.pipe.Pre = []Stage{o.hp}
	o.SetParams(DefaultOverdriveParams())
	return o, nil
}

// SetParams applies p without resetting filter state.
func (o *Overdrive) SetParams(p OverdriveParams) {
	o.params = p
	o.pipe.Drive = 1 + core.Clamp(p.Gain, 0, 10)/10*15
	o.pipe.Level = 0.1 + core.Clamp(p.Level, 0, 10)/10

	cutoff := overdriveToneMinHz * math.Pow(overdriveToneMaxHz/overdriveToneMinHz, core.Clamp(p.Tone, 0, 10)/10)
	if cutoff >= overdriveToneBypassHz {
		o.pipe.Tone = nil
		return
	}
	if o.pipe.Tone == nil {
		o.lp.Reset()
	}
	o.lp.SetCutoff(cutoff)
	o.pipe.Tone = o.tone
}

// Params returns the last applied parameters.
func (o *Overdrive) Params() OverdriveParams { return o.params }

// ToneBypassed reports whether the tone filter is currently skipped.
func (o *Overdrive) ToneBypassed() bool { return o.pipe.Tone == nil }

// ProcessInPlace drives buf in place.
func (o *Overdrive) ProcessInPlace(buf []float64) { o.pipe.Process(buf) }

// Reset clears filter state.
func (o *Overdrive) Reset() {
	o.hp.Reset()
	o.lp.Reset()
}

// VintageParams holds the knob positions, each 0..10.
type VintageParams struct {
	Drive float64
	Tone  float64
	Level float64
}

// DefaultVintageParams returns drive 6, tone 4, level 8.
func DefaultVintageParams() VintageParams {
	return VintageParams{Drive: 6, Tone: 4, Level: 8}
}

// Vintage is a high-gain tanh overdrive with a one-pole tone control whose
// cutoff follows the square of the knob.
type Vintage struct {
	params VintageParams
	lp     *onepole.Lowpass
	pipe   Pipeline
}

// NewVintage creates a vintage overdrive with default knobs.
func NewVintage(sampleRate float64) (*Vintage, error) {
	if err := checkSampleRate("vintage overdrive", sampleRate); err != nil {
		return nil, err
	}

	v := &Vintage{
		lp:   onepole.NewLowpass(500, sampleRate),
		pipe: newPipeline(Soft),
	}
	v.pipe.Tone = []Stage{v.lp}
	v.SetParams(DefaultVintageParams())
	return v, nil
}

// SetParams applies p without resetting filter state.
func (v *Vintage) SetParams(p VintageParams) {
	v.params = p
	v.pipe.Drive = 1 + core.Clamp(p.Drive, 0, 10)/10*49
	tone := core.Clamp(p.Tone, 0, 10) / 10
	v.lp.SetCutoff(500 + tone*tone*11500)
	v.pipe.Level = core.Clamp(p.Level, 0, 10) / 10
}

// Params returns the last applied parameters.
func (v *Vintage) Params() VintageParams { return v.params }

// ProcessInPlace drives buf in place.
func (v *Vintage) ProcessInPlace(buf []float64) { v.pipe.Process(buf) }

// Reset clears filter state.
func (v *Vintage) Reset() { v.lp.Reset() }
