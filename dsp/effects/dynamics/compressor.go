package dynamics

import (
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/envelope"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
)

const (
	brightShelfHz = 3000.0
	brightShelfDB = 12.0
	brightShelfQ  = 1.0

	minTimeMs = 0.1
)

// CompressorParams configures a Compressor.
type CompressorParams struct {
	ThresholdDB float64 // -60..0
	Ratio       float64 // 1..20
	AttackMs    float64 // 1..100
	ReleaseMs   float64 // 10..1000
	Level       float64 // 0..10
	Bright      bool
}

// DefaultCompressorParams returns the instrument compressor defaults.
// Level 5 is unity makeup.
func DefaultCompressorParams() CompressorParams {
	return CompressorParams{ThresholdDB: -20, Ratio: 4, AttackMs: 10, ReleaseMs: 200, Level: 5}
}

// DefaultVocalCompressorParams returns the vocal compressor defaults.
// Level 1 is unity makeup.
func DefaultVocalCompressorParams() CompressorParams {
	return CompressorParams{ThresholdDB: -20, Ratio: 4, AttackMs: 10, ReleaseMs: 200, Level: 1}
}

// Compressor is a feed-forward peak compressor. In bright mode a +12 dB
// high shelf at 3 kHz colors the signal ahead of detection, so the shelf
// is heard and compressed alike.
type Compressor struct {
	params CompressorParams

	follower *envelope.Follower
	bright   *design.Filter

	threshold  float64
	ratio      float64
	makeup     float64
	levelScale float64
	brightOn   bool
	gain       float64
}

// NewCompressor creates the instrument compressor, whose level knob maps
// 0..10 onto 0..2 makeup.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	return newCompressor("compressor", sampleRate, 1.0/5, DefaultCompressorParams())
}

// NewVocalCompressor creates the vocal compressor, whose level knob is the
// makeup gain itself.
func NewVocalCompressor(sampleRate float64) (*Compressor, error) {
	return newCompressor("vocal compressor", sampleRate, 1, DefaultVocalCompressorParams())
}

func newCompressor(name string, sampleRate, levelScale float64, p CompressorParams) (*Compressor, error) {
	if err := checkSampleRate(name, sampleRate); err != nil {
		return nil, err
	}

	c := &Compressor{
		follower:   envelope.NewFollower(0.01, 0.2, sampleRate),
		bright:     design.NewFilter(design.KindHighShelf, sampleRate, brightShelfHz, brightShelfDB, brightShelfQ),
		levelScale: levelScale,
		gain:       1,
	}
	c.SetParams(p)
	return c, nil
}

// SetParams applies p. The envelope and shelf state are kept.
func (c *Compressor) SetParams(p CompressorParams) {
	c.params = p
	c.threshold = core.DBToLinear(core.Clamp(p.ThresholdDB, -60, 0))
	c.ratio = core.Clamp(p.Ratio, 1, 20)
	c.makeup = core.Clamp(p.Level, 0, 10) * c.levelScale
	c.brightOn = p.Bright

	attack := max(core.Clamp(p.AttackMs, 1, 100), minTimeMs) / 1000
	release := max(core.Clamp(p.ReleaseMs, 10, 1000), minTimeMs) / 1000
	c.follower.SetTimes(attack, release)
}

// Params returns the last applied parameters.
func (c *Compressor) Params() CompressorParams { return c.params }

// GainReduction returns the most recent gain in linear units, 1 meaning
// no reduction.
func (c *Compressor) GainReduction() float64 { return c.gain }

// ProcessSample processes one sample.
func (c *Compressor) ProcessSample(x float64) float64 {
	if c.brightOn {
		x = c.bright.ProcessSample(x)
	}
	env := c.follower.Process(x)
	c.gain = compressionGain(env, c.threshold, c.ratio)
	return core.HardClip(x * c.gain * c.makeup)
}

// ProcessInPlace processes buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears envelope and shelf state.
func (c *Compressor) Reset() {
	c.follower.Reset()
	c.bright.Reset()
	c.gain = 1
}
