package reverb

import "github.com/cwbudde/algo-pedalboard/dsp/delay"

// allpass is a Schroeder all-pass section with transfer function
// (-g + z^-D) / (1 - g·z^-D). D may change between samples up to the
// line length.
type allpass struct {
	line *delay.Line
	gain float64
}

func newAllpass(maxDelay int, gain float64) (*allpass, error) {
	line, err := delay.New(max(maxDelay, 2))
	if err != nil {
		return nil, err
	}
	return &allpass{line: line, gain: gain}, nil
}

func (a *allpass) process(x float64, d int) float64 {
	delayed := a.line.Read(d)
	v := x + a.gain*delayed
	a.line.Write(v)
	return delayed - a.gain*v
}

func (a *allpass) reset() { a.line.Reset() }

// comb is a feedback comb filter with a one-pole low-pass in the loop.
type comb struct {
	line    *delay.Line
	damping float64
	lp      float64
}

func newComb(maxDelay int) (*comb, error) {
	line, err := delay.New(max(maxDelay, 2))
	if err != nil {
		return nil, err
	}
	return &comb{line: line}, nil
}

// process returns the tap d samples back and feeds x plus the damped tap
// scaled by feedback into the line.
func (c *comb) process(x float64, d int, feedback float64) float64 {
	delayed := c.line.Read(d)
	c.lp = delayed*(1-c.damping) + c.lp*c.damping
	c.line.Write(x + c.lp*feedback)
	return delayed
}

func (c *comb) reset() {
	c.line.Reset()
	c.lp = 0
}
