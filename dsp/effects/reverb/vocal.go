package reverb

import (
	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
)

var (
	combSeconds    = [...]float64{0.0297, 0.0371, 0.0411, 0.0437}
	tailAllpassSec = [...]float64{0.005, 0.0017}
	erSeconds      = [...]float64{0.0043, 0.0215, 0.0225, 0.0268, 0.0270, 0.0298}
	erGains        = [...]float64{0.841, 0.504, 0.490, 0.379, 0.380, 0.346}
)

const (
	maxPredelayMs = 100.0
	erMix         = 0.6
	tailMix       = 0.4
)

// VocalReverbParams configures a VocalReverb.
type VocalReverbParams struct {
	Mix        float64 // 0..1
	Size       float64 // 0.1..1
	Decay      float64 // 0..1
	PredelayMs float64 // 0..100
}

// DefaultVocalReverbParams returns mix 0.3, size 0.7, decay 0.5 and
// 10 ms pre-delay.
func DefaultVocalReverbParams() VocalReverbParams {
	return VocalReverbParams{Mix: 0.3, Size: 0.7, Decay: 0.5, PredelayMs: 10}
}

// VocalReverb is a Schroeder reverb. The pre-delayed input feeds six
// early reflections and four parallel damped combs; the comb sum is
// diffused by two all-passes. Size scales every delay, Decay darkens
// the comb loops.
type VocalReverb struct {
	sampleRate float64
	params     VocalReverbParams

	input    *delay.Line
	predelay int
	erTaps   [len(erSeconds)]int

	combs     [len(combSeconds)]*comb
	combTaps  [len(combSeconds)]int
	feedback  float64
	allpasses [len(tailAllpassSec)]*allpass
	apTaps    [len(tailAllpassSec)]int

	mix float64
}

// NewVocalReverb creates a vocal reverb with default parameters.
func NewVocalReverb(sampleRate float64) (*VocalReverb, error) {
	if err := checkSampleRate("vocal reverb", sampleRate); err != nil {
		return nil, err
	}

	longestER := erSeconds[len(erSeconds)-1]
	input, err := delay.NewSeconds(maxPredelayMs/1000+longestER, sampleRate)
	if err != nil {
		return nil, err
	}

	r := &VocalReverb{sampleRate: sampleRate, input: input}
	for i, s := range combSeconds {
		c, err := newComb(int(s*sampleRate) + 1)
		if err != nil {
			return nil, err
		}
		r.combs[i] = c
	}
	for i, s := range tailAllpassSec {
		r.apTaps[i] = max(int(s*sampleRate), 1)
		ap, err := newAllpass(r.apTaps[i]+1, diffusionGain)
		if err != nil {
			return nil, err
		}
		r.allpasses[i] = ap
	}
	r.SetParams(DefaultVocalReverbParams())
	return r, nil
}

// SetParams applies p. Buffers are sized for the largest settings, so
// nothing is reallocated or cleared.
func (r *VocalReverb) SetParams(p VocalReverbParams) {
	r.params = p
	size := core.Clamp(p.Size, 0.1, 1)

	r.predelay = core.Samples(core.Clamp(p.PredelayMs, 0, maxPredelayMs), r.sampleRate)
	for i, s := range erSeconds {
		r.erTaps[i] = r.predelay + int(s*r.sampleRate*size)
	}
	for i, s := range combSeconds {
		r.combTaps[i] = max(int(s*r.sampleRate*size), 1)
		r.combs[i].damping = 0.4 * core.Clamp(p.Decay, 0, 1)
	}
	r.feedback = 0.82 + 0.15*size
	r.mix = core.Clamp(p.Mix, 0, 1)
}

// Params returns the last applied parameters.
func (r *VocalReverb) Params() VocalReverbParams { return r.params }

// ProcessSample processes one sample.
func (r *VocalReverb) ProcessSample(x float64) float64 {
	r.input.Write(x)
	// Read(1) is x itself, so a tap of n samples reads Read(n+1).
	pre := r.input.Read(r.predelay + 1)

	er := 0.0
	for i, d := range r.erTaps {
		er += r.input.Read(d+1) * erGains[i]
	}

	tail := 0.0
	for i, c := range r.combs {
		tail += c.process(pre, r.combTaps[i], r.feedback)
	}
	for i, ap := range r.allpasses {
		tail = ap.process(tail, r.apTaps[i])
	}

	wet := erMix*er + tailMix*tail
	return core.HardClip(x*(1-r.mix) + wet*r.mix)
}

// ProcessInPlace processes buf in place.
func (r *VocalReverb) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = r.ProcessSample(x)
	}
}

// Reset silences the reverb.
func (r *VocalReverb) Reset() {
	r.input.Reset()
	for _, c := range r.combs {
		c.reset()
	}
	for _, ap := range r.allpasses {
		ap.reset()
	}
}
