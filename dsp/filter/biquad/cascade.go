package biquad

// Cascade runs sections in series. Even-order designs such as the
// Butterworth lowpass come out of package design as one Coefficients per
// section, in cascade order.
type Cascade struct {
	sections []Section
}

// NewCascade builds a cascade with one section per entry of coeffs.
func NewCascade(coeffs []Coefficients) *Cascade {
	c := &Cascade{sections: make([]Section, len(coeffs))}
	c.Retune(coeffs)
	return c
}

// Retune replaces the section coefficients in order, keeping state.
// Extra entries are ignored and sections past len(coeffs) are untouched.
func (c *Cascade) Retune(coeffs []Coefficients) {
	for i := range min(len(coeffs), len(c.sections)) {
		c.sections[i].SetCoefficients(coeffs[i])
	}
}

// Len reports the number of sections.
func (c *Cascade) Len() int { return len(c.sections) }

// ProcessSample runs x through every section.
func (c *Cascade) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}
	return x
}

// ProcessBlock filters buf in place through every section.
func (c *Cascade) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset zeroes every section.
func (c *Cascade) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}
