// Package onepole provides first-order lowpass and highpass filters with a
// single coefficient alpha = exp(-2π·fc/fs), for tone shaping where a full
// biquad is unwarranted.
package onepole

import "math"

// Alpha returns the feedback coefficient for a cutoff in Hz. The cutoff is
// clamped to (0, fs/2).
func Alpha(cutoff, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	cutoff = math.Min(math.Max(cutoff, 0), sampleRate/2)
	return math.Exp(-2 * math.Pi * cutoff / sampleRate)
}

// Lowpass is y[n] = (1-a)·x[n] + a·y[n-1].
type Lowpass struct {
	sampleRate float64
	cutoff     float64
	alpha      float64
	y1         float64
}

// NewLowpass returns a lowpass filter at cutoff Hz.
func NewLowpass(cutoff, sampleRate float64) *Lowpass {
	f := &Lowpass{sampleRate: sampleRate, cutoff: -1}
	f.SetCutoff(cutoff)
	return f
}

// SetCutoff updates the cutoff frequency. State is kept.
func (f *Lowpass) SetCutoff(cutoff float64) {
	if cutoff == f.cutoff {
		return
	}
	f.cutoff = cutoff
	f.alpha = Alpha(cutoff, f.sampleRate)
}

// Cutoff returns the current cutoff in Hz.
func (f *Lowpass) Cutoff() float64 { return f.cutoff }

// ProcessSample filters one sample.
func (f *Lowpass) ProcessSample(x float64) float64 {
	f.y1 = (1-f.alpha)*x + f.alpha*f.y1
	return f.y1
}

// ProcessBlock filters buf in place.
func (f *Lowpass) ProcessBlock(buf []float64) {
	a, y := f.alpha, f.y1
	for i, x := range buf {
		y = (1-a)*x + a*y
		buf[i] = y
	}
	if y > -1e-30 && y < 1e-30 {
		y = 0
	}
	f.y1 = y
}

// Reset clears the filter memory.
func (f *Lowpass) Reset() { f.y1 = 0 }

// Highpass is y[n] = (1+a)/2·(x[n]-x[n-1]) + a·y[n-1].
type Highpass struct {
	sampleRate float64
	cutoff     float64
	alpha      float64
	x1, y1     float64
}

// NewHighpass returns a highpass filter at cutoff Hz.
func NewHighpass(cutoff, sampleRate float64) *Highpass {
	f := &Highpass{sampleRate: sampleRate, cutoff: -1}
	f.SetCutoff(cutoff)
	return f
}

// SetCutoff updates the cutoff frequency. State is kept.
func (f *Highpass) SetCutoff(cutoff float64) {
	if cutoff == f.cutoff {
		return
	}
	f.cutoff = cutoff
	f.alpha = Alpha(cutoff, f.sampleRate)
}

// Cutoff returns the current cutoff in Hz.
func (f *Highpass) Cutoff() float64 { return f.cutoff }

// ProcessSample filters one sample.
func (f *Highpass) ProcessSample(x float64) float64 {
	y := (1+f.alpha)/2*(x-f.x1) + f.alpha*f.y1
	f.x1, f.y1 = x, y
	return y
}

// ProcessBlock filters buf in place.
func (f *Highpass) ProcessBlock(buf []float64) {
	g := (1 + f.alpha) / 2
	a, x1, y := f.alpha, f.x1, f.y1
	for i, x := range buf {
		y = g*(x-x1) + a*y
		x1 = x
		buf[i] = y
	}
	if y > -1e-30 && y < 1e-30 {
		y = 0
	}
	f.x1, f.y1 = x1, y
}

// Reset clears the filter memory.
func (f *Highpass) Reset() { f.x1, f.y1 = 0, 0 }
