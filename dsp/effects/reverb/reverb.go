package reverb

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
)

var diffusionSeconds = [...]float64{0.0047, 0.0036, 0.0127, 0.0093}

const (
	diffusionGain = 0.7
	loopSeconds   = 0.07
)

// ReverbParams configures a Reverb.
type ReverbParams struct {
	Mix   float64 // 0..1
	Size  float64 // 0..1
	Decay float64 // 0..1
	Level float64 // 0..2
}

// DefaultReverbParams returns mix 0.3, size 0.7, decay 0.5, level 1.
func DefaultReverbParams() ReverbParams {
	return ReverbParams{Mix: 0.3, Size: 0.7, Decay: 0.5, Level: 1}
}

// Reverb diffuses the input through four all-pass stages whose delays
// scale with Size, then recirculates it through a 70 ms loop with a
// one-pole damping filter. Decay raises the loop gain and brightens the
// loop filter.
type Reverb struct {
	params ReverbParams

	diffusers [len(diffusionSeconds)]*allpass
	maxTaps   [len(diffusionSeconds)]int
	taps      [len(diffusionSeconds)]int

	loop     *delay.Line
	loopTaps int
	lp       float64
	damping  float64
	feedback float64

	mix   float64
	level float64
}

// NewReverb creates a reverb with default parameters.
func NewReverb(sampleRate float64) (*Reverb, error) {
	if err := checkSampleRate("reverb", sampleRate); err != nil {
		return nil, err
	}

	r := &Reverb{loopTaps: max(int(loopSeconds*sampleRate), 1)}
	for i, s := range diffusionSeconds {
		r.maxTaps[i] = max(int(s*sampleRate), 1)
		ap, err := newAllpass(r.maxTaps[i]+1, diffusionGain)
		if err != nil {
			return nil, err
		}
		r.diffusers[i] = ap
	}

	loop, err := delay.New(r.loopTaps + 1)
	if err != nil {
		return nil, err
	}
	r.loop = loop
	r.SetParams(DefaultReverbParams())
	return r, nil
}

// SetParams applies p. The tail keeps ringing across changes.
func (r *Reverb) SetParams(p ReverbParams) {
	r.params = p
	scale := 0.5 + 0.5*core.Clamp(p.Size, 0, 1)
	for i, n := range r.maxTaps {
		r.taps[i] = max(int(float64(n)*scale), 1)
	}

	decay := core.Clamp(p.Decay, 0, 1)
	r.feedback = 0.3 + 0.6*decay
	r.damping = 0.4 * (1 - decay)
	r.mix = core.Clamp(p.Mix, 0, 1)
	r.level = core.Clamp(p.Level, 0, 2)
}

// Params returns the last applied parameters.
func (r *Reverb) Params() ReverbParams { return r.params }

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(x float64) float64 {
	wet := x
	for i, ap := range r.diffusers {
		wet = ap.process(wet, r.taps[i])
	}

	delayed := r.loop.Read(r.loopTaps)
	r.lp = delayed*(1-r.damping) + r.lp*r.damping
	r.loop.Write(core.HardClip(wet + r.lp*r.feedback))

	out := (x*(1-r.mix) + delayed*r.mix) * r.level
	if math.Abs(r.lp) < 1e-30 {
		r.lp = 0
	}
	return core.HardClip(out)
}

// ProcessInPlace processes buf in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = r.ProcessSample(x)
	}
}

// Reset silences the tail.
func (r *Reverb) Reset() {
	for _, ap := range r.diffusers {
		ap.reset()
	}
	r.loop.Reset()
	r.lp = 0
}
