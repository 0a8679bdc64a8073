package pitch

import "github.com/cwbudde/algo-pedalboard/dsp/core"

const correctorTaps = 5

// CorrectorParams configures a Corrector.
type CorrectorParams struct {
	// Tolerance in cents is kept for presets and display. The smoothing
	// does not use it.
	Tolerance float64 // 0..50
	Speed     float64 // 0.1..1
}

// DefaultCorrectorParams returns tolerance 20, speed 0.8.
func DefaultCorrectorParams() CorrectorParams {
	return CorrectorParams{Tolerance: 20, Speed: 0.8}
}

// Corrector blends the signal toward a centered five-tap moving average by
// Speed. Centering the average needs two samples of lookahead, so the
// output lags the input by two samples.
type Corrector struct {
	params CorrectorParams
	hist   [correctorTaps]float64
	pos    int
	speed  float64
}

// NewCorrector creates a corrector with default parameters.
func NewCorrector(sampleRate float64) (*Corrector, error) {
	if err := checkSampleRate("pitch correction", sampleRate); err != nil {
		return nil, err
	}
	c := &Corrector{}
	c.SetParams(DefaultCorrectorParams())
	return c, nil
}

// SetParams applies p.
func (c *Corrector) SetParams(p CorrectorParams) {
	c.params = p
	c.speed = core.Clamp(p.Speed, 0.1, 1)
}

// Params returns the last applied parameters.
func (c *Corrector) Params() CorrectorParams { return c.params }

// ProcessSample feeds one sample and returns the corrected sample from
// two samples earlier.
func (c *Corrector) ProcessSample(x float64) float64 {
	c.hist[c.pos] = x
	c.pos = (c.pos + 1) % correctorTaps

	sum := 0.0
	for _, v := range c.hist {
		sum += v
	}
	center := c.hist[(c.pos+correctorTaps/2)%correctorTaps]

	return core.HardClip((1-c.speed)*center + c.speed*sum/correctorTaps)
}

// ProcessInPlace processes buf in place.
func (c *Corrector) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears the history.
func (c *Corrector) Reset() {
	c.hist = [correctorTaps]float64{}
	c.pos = 0
}
