package distortion

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Stage filters a block in place. Biquad sections, design filters and
// one-pole filters all satisfy it.
type Stage interface {
	ProcessBlock(buf []float64)
}

// Shaper maps one driven sample to its saturated value.
type Shaper func(x float64) float64

// Soft is tanh saturation.
func Soft(x float64) float64 { return math.Tanh(x) }

// Hard clips to [-1, 1].
func Hard(x float64) float64 { return core.HardClip(x) }

// Asymmetric returns a shaper that soft-squashes with tanh(0.5x) and
// then clips positive excursions at pos and negative ones at -neg.
func Asymmetric(pos, neg float64) Shaper {
	return func(x float64) float64 {
		return core.Clamp(math.Tanh(0.5*x), -neg, pos)
	}
}

// Pipeline is the stage order every pedal in this package runs:
//
//	pre -> drive -> shape -> tone -> dry blend -> level -> clip
//
// Stage slices may be swapped between blocks; filter state lives in the
// stages themselves.
type Pipeline struct {
	Pre   []Stage
	Drive float64
	Shape Shaper
	Tone  []Stage
	// Mix is the processed share of the output. Values >= 1 skip the
	// dry copy entirely.
	Mix   float64
	Level float64

	dry []float64
}

func newPipeline(shape Shaper) Pipeline {
	return Pipeline{
		Drive: 1,
		Shape: shape,
		Mix:   1,
		Level: 1,
		dry:   make([]float64, 0, core.DefaultBlockSize),
	}
}

// Process runs the pipeline over buf in place.
func (p *Pipeline) Process(buf []float64) {
	blend := p.Mix < 1
	if blend {
		p.dry = core.EnsureLen(p.dry, len(buf))
		copy(p.dry, buf)
	}

	for _, s := range p.Pre {
		s.ProcessBlock(buf)
	}

	shape := p.Shape
	if shape == nil {
		shape = Soft
	}
	for i, x := range buf {
		buf[i] = shape(x * p.Drive)
	}

	for _, s := range p.Tone {
		s.ProcessBlock(buf)
	}

	if blend {
		mix := core.Clamp(p.Mix, 0, 1)
		vecmath.ScaleBlock(buf, buf, mix)
		vecmath.ScaleBlock(p.dry, p.dry, 1-mix)
		vecmath.AddBlockInPlace(buf, p.dry)
	}

	vecmath.ScaleBlock(buf, buf, p.Level)
	core.ClipBlock(buf)
}

func checkSampleRate(name string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", name, sampleRate)
	}
	return nil
}
