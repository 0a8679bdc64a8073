package biquad

// Coefficients are the normalized (a0 == 1) coefficients of one
// second-order section, run as Direct Form II Transposed:
//
//	y  = B0*x + s1
//	s1 = B1*x - A1*y + s2
//	s2 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity is the pass-through section.
var Identity = Coefficients{B0: 1}

// denormal is the magnitude below which carried state is flushed to zero
// at the end of a block. Long silent tails otherwise decay into subnormal
// floats.
const denormal = 1e-30

// Section is one biquad with its two state registers. The zero value is
// a silent filter; use NewSection or SetCoefficients before processing.
type Section struct {
	Coefficients

	s1, s2 float64
}

// NewSection returns a section running c from zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients swaps in c. The state registers carry over.
func (s *Section) SetCoefficients(c Coefficients) { s.Coefficients = c }

// ProcessSample runs one sample through the section.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = s.B1*x - s.A1*y + s.s2
	s.s2 = s.B2*x - s.A2*y
	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2
	for i, x := range buf {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		buf[i] = y
	}
	s.s1, s.s2 = flushDenormal(s1), flushDenormal(s2)
}

// Reset zeroes the state registers.
func (s *Section) Reset() { s.s1, s.s2 = 0, 0 }

// State reports the two state registers.
func (s *Section) State() [2]float64 { return [2]float64{s.s1, s.s2} }

func flushDenormal(v float64) float64 {
	if v < denormal && v > -denormal {
		return 0
	}
	return v
}
