package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
)

const (
	maxDelaySeconds  = 2.0
	maxDelayFeedback = 0.95
)

// DelayParams configures a Delay.
type DelayParams struct {
	TimeMs   float64
	Feedback float64
	Mix      float64
}

// DefaultDelayParams returns the instrument echo defaults.
func DefaultDelayParams() DelayParams {
	return DelayParams{TimeMs: 300, Feedback: 0.4, Mix: 0.3}
}

// DefaultVocalDelayParams returns the longer, wetter vocal echo defaults.
func DefaultVocalDelayParams() DelayParams {
	return DelayParams{TimeMs: 500, Feedback: 0.6, Mix: 0.7}
}

// Delay is a feedback echo with dry/wet mix. The delay line holds two
// seconds, so it can be retimed without reallocating.
type Delay struct {
	sampleRate float64
	params     DelayParams

	line     *delay.Line
	taps     float64
	feedback float64
	mix      float64
}

// NewDelay creates a delay with the instrument defaults.
func NewDelay(sampleRate float64) (*Delay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	line, err := delay.NewSeconds(maxDelaySeconds, sampleRate)
	if err != nil {
		return nil, err
	}

	d := &Delay{sampleRate: sampleRate, line: line}
	d.SetParams(DefaultDelayParams())
	return d, nil
}

// SetParams applies p. The buffered echo tail is kept.
func (d *Delay) SetParams(p DelayParams) {
	d.params = p
	taps := core.Samples(core.Clamp(p.TimeMs, 1, maxDelaySeconds*1000), d.sampleRate)
	d.taps = float64(min(max(taps, 1), d.line.Len()-1))
	d.feedback = core.Clamp(p.Feedback, 0, maxDelayFeedback)
	d.mix = core.Clamp(p.Mix, 0, 1)
}

// Params returns the last applied parameters.
func (d *Delay) Params() DelayParams { return d.params }

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(x float64) float64 {
	wet := d.line.Process(x, d.taps, d.feedback)
	return core.HardClip(x*(1-d.mix) + wet*d.mix)
}

// ProcessInPlace applies the echo to buf.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// Reset clears the echo tail.
func (d *Delay) Reset() {
	d.line.Reset()
}
