package pitchdetect

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	// DefaultThreshold is the aperiodicity threshold on the cumulative
	// mean normalized difference.
	DefaultThreshold = 0.15

	// SilenceThreshold is the peak amplitude below which a block is
	// treated as silent.
	SilenceThreshold = 0.05
)

// ErrBlockTooShort is returned when the analysis size cannot hold a lag range.
var ErrBlockTooShort = errors.New("pitchdetect: analysis block too short")

// Estimator runs YIN on fixed-size blocks.
type Estimator struct {
	sampleRate float64
	threshold  float64
	size       int // analysis block length
	window     int // integration window W = size/2; lags run over [1, W)

	plan   *algofft.Plan[complex128]
	signal []complex128
	head   []complex128
	energy []float64 // prefix sums of x²
	cmnd   []float64
}

// NewEstimator prepares an estimator for blocks of size samples.
func NewEstimator(sampleRate float64, size int) (*Estimator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("pitchdetect: sample rate must be positive and finite: %f", sampleRate)
	}
	if size < 8 {
		return nil, fmt.Errorf("%w: %d", ErrBlockTooShort, size)
	}

	window := size / 2
	fftSize := nextPowerOf2(size + window)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("pitchdetect: failed to create FFT plan: %w", err)
	}

	return &Estimator{
		sampleRate: sampleRate,
		threshold:  DefaultThreshold,
		size:       size,
		window:     window,
		plan:       plan,
		signal:     make([]complex128, fftSize),
		head:       make([]complex128, fftSize),
		energy:     make([]float64, size+1),
		cmnd:       make([]float64, window),
	}, nil
}

// SetThreshold overrides the aperiodicity threshold.
func (e *Estimator) SetThreshold(threshold float64) {
	if threshold > 0 && threshold < 1 {
		e.threshold = threshold
	}
}

// Size returns the expected analysis block length.
func (e *Estimator) Size() int { return e.size }

// Estimate returns the fundamental frequency of x in Hz, or 0 when x is
// silent, shorter than Size, or has no lag below the threshold inside the
// search window. Only the first Size samples are analysed.
func (e *Estimator) Estimate(x []float64) float64 {
	if len(x) < e.size {
		return 0
	}
	x = x[:e.size]

	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < SilenceThreshold {
		return 0
	}

	if !e.difference(x) {
		return 0
	}
	e.normalize()

	tau := e.firstDip()
	if tau < 0 {
		return 0
	}

	refined := e.interpolate(tau)
	if refined <= 0 {
		return 0
	}

	return e.sampleRate / refined
}

// difference fills cmnd[tau] with d(tau) = Σ_{j<W} (x[j]-x[j+tau])².
// Expanded, d(tau) = E(0,W) + E(tau,tau+W) - 2·r(tau), where r is the
// cross-correlation of the first window with the whole block.
func (e *Estimator) difference(x []float64) bool {
	for i := range e.signal {
		e.signal[i] = 0
		e.head[i] = 0
	}
	for i, v := range x {
		e.signal[i] = complex(v, 0)
	}
	for i := range e.window {
		e.head[i] = complex(x[i], 0)
	}

	if err := e.plan.Forward(e.signal, e.signal); err != nil {
		return false
	}
	if err := e.plan.Forward(e.head, e.head); err != nil {
		return false
	}
	for i := range e.signal {
		e.signal[i] *= cmplxConj(e.head[i])
	}
	if err := e.plan.Inverse(e.signal, e.signal); err != nil {
		return false
	}

	e.energy[0] = 0
	for i, v := range x {
		e.energy[i+1] = e.energy[i] + v*v
	}

	e0 := e.energy[e.window]
	e.cmnd[0] = 0
	for tau := 1; tau < e.window; tau++ {
		et := e.energy[tau+e.window] - e.energy[tau]
		d := e0 + et - 2*real(e.signal[tau])
		if d < 0 {
			d = 0 // rounding
		}
		e.cmnd[tau] = d
	}

	return true
}

// normalize turns the difference function into the cumulative mean
// normalized difference d'(tau) = d(tau)·tau / Σ_{k≤tau} d(k).
func (e *Estimator) normalize() {
	e.cmnd[0] = 1
	sum := 0.0
	for tau := 1; tau < e.window; tau++ {
		sum += e.cmnd[tau]
		if sum == 0 {
			e.cmnd[tau] = 1
			continue
		}
		e.cmnd[tau] *= float64(tau) / sum
	}
}

// firstDip returns the first lag below threshold, walked down to the
// bottom of its dip, or -1. The parabolic refinement assumes tau is the
// local minimum.
func (e *Estimator) firstDip() int {
	for tau := 1; tau < e.window; tau++ {
		if e.cmnd[tau] >= e.threshold {
			continue
		}
		for tau+1 < e.window && e.cmnd[tau+1] < e.cmnd[tau] {
			tau++
		}
		return tau
	}
	return -1
}

func (e *Estimator) interpolate(tau int) float64 {
	if tau <= 0 || tau >= e.window-1 {
		return float64(tau)
	}

	prev, cur, next := e.cmnd[tau-1], e.cmnd[tau], e.cmnd[tau+1]
	den := 2 * (2*cur - next - prev)
	if den == 0 {
		return float64(tau)
	}

	return float64(tau) + (next-prev)/den
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
