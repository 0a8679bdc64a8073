package dynamics

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
)

// PopClickParams configures a PopClickSuppressor.
type PopClickParams struct {
	CutoffHz       float64 // 40..200
	ClickThreshold float64 // 0.1..1
}

// DefaultPopClickParams returns 120 Hz, 0.7.
func DefaultPopClickParams() PopClickParams {
	return PopClickParams{CutoffHz: 120, ClickThreshold: 0.7}
}

// PopClickSuppressor removes plosive rumble with a fourth-order
// Butterworth high-pass and repairs isolated spikes: a sample above the
// click threshold whose filtered input neighbours are both below a tenth
// of it is replaced by their average. Judging a sample needs the next
// one, so the output lags the input by one sample.
type PopClickSuppressor struct {
	params PopClickParams
	hp     [2]*design.Filter

	threshold float64
	prev      float64 // filtered input before pending
	pending   float64 // filtered input awaiting its decision
}

// NewPopClickSuppressor creates a suppressor with default parameters.
func NewPopClickSuppressor(sampleRate float64) (*PopClickSuppressor, error) {
	if err := checkSampleRate("pop/click suppressor", sampleRate); err != nil {
		return nil, err
	}

	s := &PopClickSuppressor{}
	s.hp[0] = design.NewFilter(design.KindHighpass, sampleRate, 120, 0, butterworthQLow)
	s.hp[1] = design.NewFilter(design.KindHighpass, sampleRate, 120, 0, butterworthQHigh)
	s.SetParams(DefaultPopClickParams())
	return s, nil
}

// SetParams applies p.
func (s *PopClickSuppressor) SetParams(p PopClickParams) {
	s.params = p
	cutoff := core.Clamp(p.CutoffHz, 40, 200)
	s.hp[0].Set(cutoff, 0, butterworthQLow)
	s.hp[1].Set(cutoff, 0, butterworthQHigh)
	s.threshold = core.Clamp(p.ClickThreshold, 0.1, 1)
}

// Params returns the last applied parameters.
func (s *PopClickSuppressor) Params() PopClickParams { return s.params }

// ProcessSample feeds one sample and returns the previous one, repaired
// if it was an isolated click.
func (s *PopClickSuppressor) ProcessSample(x float64) float64 {
	next := s.hp[1].ProcessSample(s.hp[0].ProcessSample(x))

	out := s.pending
	quiet := 0.1 * s.threshold
	if math.Abs(out) > s.threshold && math.Abs(s.prev) < quiet && math.Abs(next) < quiet {
		out = (s.prev + next) / 2
	}

	s.prev = s.pending
	s.pending = next
	return core.HardClip(out)
}

// ProcessInPlace processes buf in place.
func (s *PopClickSuppressor) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears filter and lookahead state.
func (s *PopClickSuppressor) Reset() {
	s.hp[0].Reset()
	s.hp[1].Reset()
	s.prev, s.pending = 0, 0
}
