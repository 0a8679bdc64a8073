package reverb

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-pedalboard/dsp/conv"
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/biquad"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	maxIRSeconds  = 3.0
	irSeed        = 0x5eed
	irFilterOrder = 4
	irPartition   = 512

	// irBuildUnits is how many partitions regeneration advances per
	// irPartition samples processed.
	irBuildUnits = 16
)

// RoomMode selects the decay envelope of the synthetic impulse response.
type RoomMode int

const (
	ModeRoom RoomMode = iota
	ModeHall
	ModeChurch
)

var roomModeNames = [...]string{"room", "hall", "church"}

// String returns the mode name used in presets.
func (m RoomMode) String() string {
	if m < 0 || int(m) >= len(roomModeNames) {
		return roomModeNames[ModeRoom]
	}
	return roomModeNames[m]
}

// ParseRoomMode maps a preset mode name to a RoomMode. Unknown names fall
// back to ModeRoom.
func ParseRoomMode(s string) RoomMode {
	for i, name := range roomModeNames {
		if name == s {
			return RoomMode(i)
		}
	}
	return ModeRoom
}

// envelopeRate is the exponential decay constant per second.
func (m RoomMode) envelopeRate() float64 {
	switch m {
	case ModeHall:
		return 2.5
	case ModeChurch:
		return 1.5
	default:
		return 4
	}
}

// ConvolutionParams configures a Convolution reverb.
type ConvolutionParams struct {
	Mode  RoomMode
	Decay float64 // 0.1..1.5, maps onto 0.3..3 s of impulse response
	Mix   float64 // 0..1
	Tone  float64 // 0..1, maps onto an 800..7000 Hz low-pass
}

// DefaultConvolutionParams returns room mode, decay 0.7, mix 0.5,
// tone 0.5.
func DefaultConvolutionParams() ConvolutionParams {
	return ConvolutionParams{Mode: ModeRoom, Decay: 0.7, Mix: 0.5, Tone: 0.5}
}

// Convolution convolves the input with a seeded noise burst shaped by an
// exponential envelope and a fourth-order Butterworth low-pass, scaled to
// unit energy. The same parameters always produce the same impulse
// response.
//
// Changing Mode, Decay or Tone starts a regeneration that runs a few
// partitions per processed block. The previous impulse response keeps
// playing until the new one is complete, then the two are swapped without
// dropping the carried tail.
type Convolution struct {
	sampleRate float64
	params     ConvolutionParams
	mix        float64

	engine *conv.Streaming
	wet    []float64

	ir, next []float64 // running impulse response, the one being built
	irLen    int

	lp       *biquad.Cascade
	lpCoeffs []biquad.Coefficients
	pcg      *rand.PCG
	rng      *rand.Rand
	build    irBuild
}

// irBuild tracks an impulse response regeneration in progress.
type irBuild struct {
	pending bool // parameters changed since the last build started
	active  bool

	n, parts   int // taps, partitions
	generated  int
	staged     int
	rate, step float64
	filter     bool
	energy     float64
	scale      float64
}

// NewConvolution creates a convolution reverb. Blocks of any length are
// accepted.
func NewConvolution(sampleRate float64) (*Convolution, error) {
	if err := checkSampleRate("convolution reverb", sampleRate); err != nil {
		return nil, err
	}

	capacity := int(math.Ceil(maxIRSeconds * sampleRate))
	engine, err := conv.NewStreaming(irPartition, capacity)
	if err != nil {
		return nil, err
	}

	pcg := rand.NewPCG(irSeed, 0)
	r := &Convolution{
		sampleRate: sampleRate,
		engine:     engine,
		wet:        make([]float64, irPartition),
		ir:         make([]float64, capacity),
		next:       make([]float64, capacity),
		lp:         biquad.NewCascade(design.ButterworthLowpass(7000, irFilterOrder, sampleRate)),
		lpCoeffs:   make([]biquad.Coefficients, 0, (irFilterOrder+1)/2),
		pcg:        pcg,
		rng:        rand.New(pcg),
	}
	r.SetParams(DefaultConvolutionParams())
	r.Settle()
	return r, nil
}

// SetParams applies p. Changing Mode, Decay or Tone schedules a
// regeneration of the impulse response; Mix applies immediately.
func (r *Convolution) SetParams(p ConvolutionParams) {
	if p.Mode != r.params.Mode || p.Decay != r.params.Decay || p.Tone != r.params.Tone {
		r.build.pending = true
	}
	r.params = p
	r.mix = core.Clamp(p.Mix, 0, 1)
}

// Params returns the last applied parameters.
func (r *Convolution) Params() ConvolutionParams { return r.params }

// IR returns the impulse response currently playing. It is valid until the
// next regeneration completes.
func (r *Convolution) IR() []float64 { return r.ir[:r.irLen] }

// Regenerating reports whether a new impulse response is scheduled or
// being built.
func (r *Convolution) Regenerating() bool { return r.build.pending || r.build.active }

// Settle finishes any scheduled regeneration at once. It does the whole
// job in one call and is meant for setup code, not the audio callback.
func (r *Convolution) Settle() {
	for r.Regenerating() {
		r.advanceBuild(math.MaxInt)
	}
}

// ProcessInPlace processes buf in place.
func (r *Convolution) ProcessInPlace(buf []float64) {
	if len(buf) == 0 {
		return
	}
	if r.Regenerating() {
		r.advanceBuild(len(buf)*irBuildUnits/irPartition + 1)
	}

	for off := 0; off < len(buf); off += len(r.wet) {
		dry := buf[off:min(off+len(r.wet), len(buf))]
		wet := r.wet[:len(dry)]
		if err := r.engine.ProcessBlockTo(wet, dry); err != nil {
			core.Zero(wet)
		}
		vecmath.ScaleBlock(wet, wet, r.mix)
		vecmath.ScaleBlock(dry, dry, 1-r.mix)
		vecmath.AddBlockInPlace(dry, wet)
		core.ClipBlock(dry)
	}
}

// Reset clears the carried tail. The impulse response is kept.
func (r *Convolution) Reset() { r.engine.Reset() }

// advanceBuild spends up to units partitions of work on the regeneration.
// Each partition is first synthesized and filtered, then, once the total
// energy is known, normalized and staged in the convolver.
func (r *Convolution) advanceBuild(units int) {
	if r.build.pending {
		r.beginBuild()
	}
	b := &r.build
	for ; units > 0 && b.active; units-- {
		if b.generated < b.parts {
			r.synthesize(b.generated)
			b.generated++
			if b.generated == b.parts && b.energy > 0 {
				b.scale = 1 / math.Sqrt(b.energy)
			}
			continue
		}

		chunk := r.partition(b.staged)
		vecmath.ScaleBlock(chunk, chunk, b.scale)
		if err := r.engine.StagePartition(b.staged, chunk); err != nil {
			b.active = false
			return
		}
		b.staged++
		if b.staged == b.parts {
			r.commit()
		}
	}
}

func (r *Convolution) beginBuild() {
	b := &r.build
	seconds := core.MapRange(core.Clamp(r.params.Decay, 0.1, 1.5), 0.1, 1.5, 0.3, maxIRSeconds)
	n := min(max(int(math.Round(r.sampleRate*seconds)), 1), len(r.next))

	*b = irBuild{
		active: true,
		n:      n,
		parts:  (n + irPartition - 1) / irPartition,
		rate:   r.params.Mode.envelopeRate(),
		scale:  1,
	}
	if n > 1 {
		b.step = seconds / float64(n-1)
	}

	r.pcg.Seed(irSeed, uint64(r.params.Mode))
	cutoff := core.MapRange(core.Clamp(r.params.Tone, 0, 1), 0, 1, 800, 7000)
	if cutoff < r.sampleRate/2-1 {
		r.lpCoeffs = design.AppendButterworthLowpass(r.lpCoeffs[:0], cutoff, irFilterOrder, r.sampleRate)
		r.lp.Retune(r.lpCoeffs)
		b.filter = true
	}
	r.lp.Reset()
}

func (r *Convolution) partition(p int) []float64 {
	start := p * irPartition
	return r.next[start:min(start+irPartition, r.build.n)]
}

// synthesize writes partition p of the new impulse response. Partitions
// must be produced in order; the noise source and the low-pass carry
// state from one to the next.
func (r *Convolution) synthesize(p int) {
	b := &r.build
	chunk := r.partition(p)
	start := p * irPartition
	for i := range chunk {
		chunk[i] = r.rng.NormFloat64() * math.Exp(-b.rate*float64(start+i)*b.step)
	}
	if b.filter {
		r.lp.ProcessBlock(chunk)
	}
	for _, v := range chunk {
		b.energy += v * v
	}
}

func (r *Convolution) commit() {
	b := &r.build
	b.active = false
	if err := r.engine.CommitStaged(b.n); err != nil {
		return
	}
	r.ir, r.next = r.next, r.ir
	r.irLen = b.n
}
