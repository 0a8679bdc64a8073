package pitch

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
)

const (
	shifterWindowSeconds = 0.04
	maxShiftSemitones    = 12.0
	shifterIdentityEps   = 1e-9
)

// ShifterParams configures a Shifter.
type ShifterParams struct {
	Semitones float64 // -12..12
	Mix       float64 // 0..1
}

// DefaultShifterParams returns no shift at half mix.
func DefaultShifterParams() ShifterParams {
	return ShifterParams{Semitones: 0, Mix: 0.5}
}

// Shifter resamples the input by 2^(semitones/12) with two read heads
// sweeping a 40 ms delay window half a window apart. Each head fades out
// as it wraps, so the wet signal is continuous across blocks.
type Shifter struct {
	params ShifterParams

	line   *delay.Line
	window float64
	phase  float64
	step   float64
	ratio  float64
	mix    float64
}

// NewShifter creates a pitch shifter with default parameters.
func NewShifter(sampleRate float64) (*Shifter, error) {
	if err := checkSampleRate("pitch shifter", sampleRate); err != nil {
		return nil, err
	}

	line, err := delay.NewSeconds(shifterWindowSeconds, sampleRate)
	if err != nil {
		return nil, err
	}

	s := &Shifter{
		line:   line,
		window: float64(line.Len() - 3),
	}
	s.SetParams(DefaultShifterParams())
	return s, nil
}

// SetParams applies p. The head positions are kept.
func (s *Shifter) SetParams(p ShifterParams) {
	s.params = p
	s.ratio = math.Pow(2, core.Clamp(p.Semitones, -maxShiftSemitones, maxShiftSemitones)/12)
	s.step = (1 - s.ratio) / s.window
	s.mix = core.Clamp(p.Mix, 0, 1)
}

// Params returns the last applied parameters.
func (s *Shifter) Params() ShifterParams { return s.params }

// Ratio returns the playback-rate ratio of the wet signal.
func (s *Shifter) Ratio() float64 { return s.ratio }

// ProcessSample processes one sample.
func (s *Shifter) ProcessSample(x float64) float64 {
	s.line.Write(x)
	if math.Abs(s.ratio-1) <= shifterIdentityEps {
		return core.HardClip(x)
	}

	p2 := s.phase + 0.5
	if p2 >= 1 {
		p2--
	}
	// sin² and cos² of the same angle sum to one.
	fade := math.Sin(math.Pi * s.phase)
	g1 := fade * fade
	wet := g1*s.line.ReadFractional(1+s.phase*s.window) + (1-g1)*s.line.ReadFractional(1+p2*s.window)

	s.phase += s.step
	s.phase -= math.Floor(s.phase)

	return core.HardClip(x*(1-s.mix) + wet*s.mix)
}

// ProcessInPlace processes buf in place.
func (s *Shifter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears the delay window and recenters the heads.
func (s *Shifter) Reset() {
	s.line.Reset()
	s.phase = 0
}
