package modulation

import (
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/lfo"
)

// TremoloParams configures a Tremolo.
type TremoloParams struct {
	Rate  float64 // Hz, 0.5..20
	Depth float64 // 0..1
}

// DefaultTremoloParams returns rate 5, depth 0.8.
func DefaultTremoloParams() TremoloParams {
	return TremoloParams{Rate: 5, Depth: 0.8}
}

// Tremolo multiplies the input by 1 - depth·(lfo+1)/2.
type Tremolo struct {
	params TremoloParams
	osc    *lfo.LFO
	depth  float64
}

// NewTremolo creates a tremolo with default parameters.
func NewTremolo(sampleRate float64) (*Tremolo, error) {
	if err := checkSampleRate("tremolo", sampleRate); err != nil {
		return nil, err
	}

	t := &Tremolo{osc: lfo.New(5, sampleRate)}
	t.SetParams(DefaultTremoloParams())
	return t, nil
}

// SetParams applies p. The LFO phase is kept.
func (t *Tremolo) SetParams(p TremoloParams) {
	t.params = p
	t.osc.SetRate(core.Clamp(p.Rate, 0.5, 20))
	t.depth = core.Clamp(p.Depth, 0, 1)
}

// Params returns the last applied parameters.
func (t *Tremolo) Params() TremoloParams { return t.params }

// ProcessSample processes one sample.
func (t *Tremolo) ProcessSample(x float64) float64 {
	mod := 1 - t.depth*(t.osc.Next()+1)/2
	return core.HardClip(x * mod)
}

// ProcessInPlace processes buf in place.
func (t *Tremolo) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = t.ProcessSample(x)
	}
}

// Reset restarts the LFO at phase 0.
func (t *Tremolo) Reset() { t.osc.Reset() }
