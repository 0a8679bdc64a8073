package modulation

import (
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
	"github.com/cwbudde/algo-pedalboard/dsp/lfo"
)

const maxFlangerFeedback = 0.95

// FlangerVoicing fixes the delay range and feedback polarity of a
// Flanger. The manual knob places the sweep center inside the range.
type FlangerVoicing struct {
	MinDelayMs     float64
	MaxDelayMs     float64
	InvertFeedback bool
}

var (
	// BF2Voicing is the classic 0.5..5 ms positive-feedback flanger.
	BF2Voicing = FlangerVoicing{MinDelayMs: 0.5, MaxDelayMs: 5}
	// UltraVoicing sweeps wider and feeds back inverted for a hollow,
	// jet-like resonance.
	UltraVoicing = FlangerVoicing{MinDelayMs: 0.3, MaxDelayMs: 8, InvertFeedback: true}
)

// FlangerParams configures a Flanger. All but Rate are 0..1.
type FlangerParams struct {
	Rate      float64 // Hz, 0.1..10
	Depth     float64
	Manual    float64
	Resonance float64
}

// DefaultBF2FlangerParams returns rate 3, depth 0.7, manual 0.5,
// resonance 0.4.
func DefaultBF2FlangerParams() FlangerParams {
	return FlangerParams{Rate: 3, Depth: 0.7, Manual: 0.5, Resonance: 0.4}
}

// DefaultUltraFlangerParams returns rate 2, depth 0.8, manual 0.6,
// resonance 0.5.
func DefaultUltraFlangerParams() FlangerParams {
	return FlangerParams{Rate: 2, Depth: 0.8, Manual: 0.6, Resonance: 0.5}
}

// Flanger modulates a short delay around a manual center and feeds the
// tap back into the line.
type Flanger struct {
	sampleRate float64
	voicing    FlangerVoicing
	params     FlangerParams

	line     *delay.Line
	osc      *lfo.LFO
	center   float64
	sweep    float64
	feedback float64
}

// NewFlanger creates a flanger with the given voicing.
func NewFlanger(sampleRate float64, voicing FlangerVoicing) (*Flanger, error) {
	if err := checkSampleRate("flanger", sampleRate); err != nil {
		return nil, err
	}
	if voicing.MinDelayMs <= 0 || voicing.MaxDelayMs < voicing.MinDelayMs {
		voicing = BF2Voicing
	}

	// The sweep reaches twice the center at full depth.
	line, err := delay.NewSeconds(2*voicing.MaxDelayMs/1000, sampleRate)
	if err != nil {
		return nil, err
	}

	f := &Flanger{
		sampleRate: sampleRate,
		voicing:    voicing,
		line:       line,
		osc:        lfo.New(1, sampleRate),
	}
	if voicing.InvertFeedback {
		f.SetParams(DefaultUltraFlangerParams())
	} else {
		f.SetParams(DefaultBF2FlangerParams())
	}
	return f, nil
}

// NewBF2Flanger creates a flanger with BF2Voicing.
func NewBF2Flanger(sampleRate float64) (*Flanger, error) {
	return NewFlanger(sampleRate, BF2Voicing)
}

// NewUltraFlanger creates a flanger with UltraVoicing.
func NewUltraFlanger(sampleRate float64) (*Flanger, error) {
	return NewFlanger(sampleRate, UltraVoicing)
}

// SetParams applies p. The LFO phase and line contents are kept.
func (f *Flanger) SetParams(p FlangerParams) {
	f.params = p
	f.osc.SetRate(core.Clamp(p.Rate, 0.1, 10))

	centerMs := core.MapRange(core.Clamp(p.Manual, 0, 1), 0, 1, f.voicing.MinDelayMs, f.voicing.MaxDelayMs)
	f.center = centerMs / 1000 * f.sampleRate
	f.sweep = core.Clamp(p.Depth, 0, 1) * f.center

	f.feedback = core.Clamp(p.Resonance, 0, 1) * maxFlangerFeedback
	if f.voicing.InvertFeedback {
		f.feedback = -f.feedback
	}
}

// Params returns the last applied parameters.
func (f *Flanger) Params() FlangerParams { return f.params }

// ProcessSample processes one sample.
func (f *Flanger) ProcessSample(x float64) float64 {
	d := f.center + f.osc.Next()*f.sweep
	delayed := f.line.Process(x, d, f.feedback)
	return core.HardClip(0.5*x + 0.5*delayed)
}

// ProcessInPlace processes buf in place.
func (f *Flanger) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears the line and restarts the LFO.
func (f *Flanger) Reset() {
	f.line.Reset()
	f.osc.Reset()
}
