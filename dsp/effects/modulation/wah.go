package modulation

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
	"github.com/cwbudde/algo-pedalboard/dsp/lfo"
)

// WahParams configures a WahWah.
type WahParams struct {
	Rate    float64 // Hz, 0.1..10
	MinFreq float64 // Hz, 100..1000
	MaxFreq float64 // Hz, 1000..5000
	Q       float64 // 0.5..20
	Gain    float64 // 0..4
}

// DefaultWahParams returns the auto-wah defaults.
func DefaultWahParams() WahParams {
	return WahParams{Rate: 1.5, MinFreq: 400, MaxFreq: 2000, Q: 5, Gain: 1.5}
}

// WahWah sweeps a band-pass between MinFreq and MaxFreq on a logarithmic
// scale. Coefficients are redesigned every sample; the filter state is
// never reset by the sweep.
type WahWah struct {
	params WahParams
	osc    *lfo.LFO
	bp     *design.Filter

	minFreq float64
	ratio   float64
	q       float64
	gain    float64
}

// NewWahWah creates an auto-wah with default parameters.
func NewWahWah(sampleRate float64) (*WahWah, error) {
	if err := checkSampleRate("wahwah", sampleRate); err != nil {
		return nil, err
	}

	w := &WahWah{
		osc: lfo.New(1.5, sampleRate),
		bp:  design.NewFilter(design.KindBandpass, sampleRate, 400, 0, 5),
	}
	w.SetParams(DefaultWahParams())
	return w, nil
}

// SetParams applies p.
func (w *WahWah) SetParams(p WahParams) {
	w.params = p
	w.osc.SetRate(core.Clamp(p.Rate, 0.1, 10))
	w.minFreq = core.Clamp(p.MinFreq, 100, 1000)
	w.ratio = core.Clamp(p.MaxFreq, 1000, 5000) / w.minFreq
	w.q = core.Clamp(p.Q, 0.5, 20)
	w.gain = core.Clamp(p.Gain, 0, 4)
}

// Params returns the last applied parameters.
func (w *WahWah) Params() WahParams { return w.params }

// CenterFreq returns the band-pass center of the most recent sample.
func (w *WahWah) CenterFreq() float64 { return w.bp.Freq() }

// ProcessSample processes one sample.
func (w *WahWah) ProcessSample(x float64) float64 {
	center := w.minFreq * math.Pow(w.ratio, w.osc.NextUnipolar())
	w.bp.Set(center, 0, w.q)
	return core.HardClip(w.bp.ProcessSample(x) * w.gain)
}

// ProcessInPlace processes buf in place.
func (w *WahWah) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = w.ProcessSample(x)
	}
}

// Reset clears filter state and restarts the sweep.
func (w *WahWah) Reset() {
	w.bp.Reset()
	w.osc.Reset()
}
