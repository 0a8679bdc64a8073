package dynamics

import (
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/envelope"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
)

const (
	deesserUpperHz   = 12000.0
	deesserAttackS   = 0.0005
	deesserReleaseS  = 0.02
	butterworthQLow  = 0.5411961001461969
	butterworthQHigh = 1.3065629648763766
)

// DeEsserParams configures a DeEsser.
type DeEsserParams struct {
	Frequency   float64 // Hz, 4000..12000
	ThresholdDB float64 // -60..0
	Reduction   float64 // 0..1
}

// DefaultDeEsserParams returns 6 kHz, -25 dB, 0.6.
func DefaultDeEsserParams() DeEsserParams {
	return DeEsserParams{Frequency: 6000, ThresholdDB: -25, Reduction: 0.6}
}

// DeEsser detects energy in the band [Frequency, 12 kHz] with a
// fourth-order Butterworth band-pass and turns the full-band signal down
// while that energy exceeds the threshold. With envelope e above the
// threshold t the gain is 1 - reduction·(e-t)/e.
type DeEsser struct {
	params DeEsserParams

	band      [4]*design.Filter
	follower  *envelope.Follower
	threshold float64
	reduction float64
}

// NewDeEsser creates a de-esser with default parameters.
func NewDeEsser(sampleRate float64) (*DeEsser, error) {
	if err := checkSampleRate("deesser", sampleRate); err != nil {
		return nil, err
	}

	d := &DeEsser{
		follower: envelope.NewFollower(deesserAttackS, deesserReleaseS, sampleRate),
	}
	d.band[0] = design.NewFilter(design.KindHighpass, sampleRate, 6000, 0, butterworthQLow)
	d.band[1] = design.NewFilter(design.KindHighpass, sampleRate, 6000, 0, butterworthQHigh)
	d.band[2] = design.NewFilter(design.KindLowpass, sampleRate, deesserUpperHz, 0, butterworthQLow)
	d.band[3] = design.NewFilter(design.KindLowpass, sampleRate, deesserUpperHz, 0, butterworthQHigh)
	d.SetParams(DefaultDeEsserParams())
	return d, nil
}

// SetParams applies p. The detector is redesigned only when the
// frequency changes.
func (d *DeEsser) SetParams(p DeEsserParams) {
	d.params = p
	f := core.Clamp(p.Frequency, 4000, deesserUpperHz)
	d.band[0].Set(f, 0, butterworthQLow)
	d.band[1].Set(f, 0, butterworthQHigh)
	d.threshold = core.DBToLinear(core.Clamp(p.ThresholdDB, -60, 0))
	d.reduction = core.Clamp(p.Reduction, 0, 1)
}

// Params returns the last applied parameters.
func (d *DeEsser) Params() DeEsserParams { return d.params }

// ProcessSample processes one sample.
func (d *DeEsser) ProcessSample(x float64) float64 {
	s := x
	for _, f := range d.band {
		s = f.ProcessSample(s)
	}
	env := d.follower.Process(s)

	gain := 1.0
	if env > d.threshold {
		gain = 1 - d.reduction*(env-d.threshold)/env
	}
	return core.HardClip(x * gain)
}

// ProcessInPlace processes buf in place.
func (d *DeEsser) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// Reset clears detector state.
func (d *DeEsser) Reset() {
	for _, f := range d.band {
		f.Reset()
	}
	d.follower.Reset()
}
