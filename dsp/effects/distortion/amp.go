package distortion

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/onepole"
)

const (
	carmillaLowShelfHz  = 800.0
	carmillaHighShelfHz = 1500.0
	carmillaShelfQ      = 1.0
	carmillaClipPos     = 0.8
	carmillaClipNeg     = 0.6
)

// CarmillaParams holds gain (1..20), tone (0..10) and level (0..10).
type CarmillaParams struct {
	Gain  float64
	Tone  float64
	Level float64
}

// DefaultCarmillaParams returns gain 12, tone 6, level 7.
func DefaultCarmillaParams() CarmillaParams {
	return CarmillaParams{Gain: 12, Tone: 6, Level: 7}
}

// Carmilla voices the input with a low shelf, clips it asymmetrically and
// brightens or darkens the result with a high shelf. Both shelves follow
// the tone knob around its midpoint.
type Carmilla struct {
	params CarmillaParams
	low    *design.Filter
	high   *design.Filter
	pipe   Pipeline
}

// NewCarmilla creates the pedal with default knobs.
func NewCarmilla(sampleRate float64) (*Carmilla, error) {
	if err := checkSampleRate("carmilla distortion", sampleRate); err != nil {
		return nil, err
	}

	c := &Carmilla{
		low:  design.NewFilter(design.KindLowShelf, sampleRate, carmillaLowShelfHz, 0, carmillaShelfQ),
		high: design.NewFilter(design.KindHighShelf, sampleRate, carmillaHighShelfHz, 0, carmillaShelfQ),
		pipe: newPipeline(Asymmetric(carmillaClipPos, carmillaClipNeg)),
	}
	c.pipe.Pre = []Stage{c.low}
	c.pipe.Tone = []Stage{c.high}
	c.SetParams(DefaultCarmillaParams())
	return c, nil
}

// SetParams applies p. Shelf coefficients are only redesigned when the
// tone changes.
func (c *Carmilla) SetParams(p CarmillaParams) {
	c.params = p
	tone := core.Clamp(p.Tone, 0, 10)/10 - 0.5
	c.low.Set(carmillaLowShelfHz, tone*12, carmillaShelfQ)
	c.high.Set(carmillaHighShelfHz, tone*18, carmillaShelfQ)
	c.pipe.Drive = core.Clamp(p.Gain, 1, 20)
	c.pipe.Level = core.Clamp(p.Level, 0, 10)
}

// Params returns the last applied parameters.
func (c *Carmilla) Params() CarmillaParams { return c.params }

// ProcessInPlace drives buf in place.
func (c *Carmilla) ProcessInPlace(buf []float64) { c.pipe.Process(buf) }

// Reset clears shelf state.
func (c *Carmilla) Reset() {
	c.low.Reset()
	c.high.Reset()
}

// PureSkyParams holds the normalized knobs, each 0..1.
type PureSkyParams struct {
	Gain   float64
	Level  float64
	Bass   float64
	Treble float64
}

// DefaultPureSkyParams returns gain 0.3, level 0.7 and flat trims.
func DefaultPureSkyParams() PureSkyParams {
	return PureSkyParams{Gain: 0.3, Level: 0.7}
}

// PureSky is a low-coloration drive. Bass cuts by raising a high-pass
// corner, treble cuts by lowering a low-pass corner.
type PureSky struct {
	params PureSkyParams
	hp     *onepole.Highpass
	lp     *onepole.Lowpass
	pipe   Pipeline
}

// NewPureSky creates the pedal with default knobs.
func NewPureSky(sampleRate float64) (*PureSky, error) {
	if err := checkSampleRate("puresky", sampleRate); err != nil {
		return nil, err
	}

	s := &PureSky{
		hp:   onepole.NewHighpass(20, sampleRate),
		lp:   onepole.NewLowpass(20000, sampleRate),
		pipe: newPipeline(Soft),
	}
	s.pipe.Tone = []Stage{s.hp, s.lp}
	s.SetParams(DefaultPureSkyParams())
	return s, nil
}

// SetParams applies p without resetting filter state.
func (s *PureSky) SetParams(p PureSkyParams) {
	s.params = p
	s.pipe.Drive = 1 + core.Clamp(p.Gain, 0, 1)*20
	s.pipe.Level = core.Clamp(p.Level, 0, 1) * 1.5
	s.hp.SetCutoff(20 + math.Pow(core.Clamp(p.Bass, 0, 1), 1.5)*680)
	s.lp.SetCutoff(20000 - math.Pow(core.Clamp(p.Treble, 0, 1), 1.5)*18500)
}

// Params returns the last applied parameters.
func (s *PureSky) Params() PureSkyParams { return s.params }

// ProcessInPlace drives buf in place.
func (s *PureSky) ProcessInPlace(buf []float64) { s.pipe.Process(buf) }

// Reset clears filter state.
func (s *PureSky) Reset() {
	s.hp.Reset()
	s.lp.Reset()
}
