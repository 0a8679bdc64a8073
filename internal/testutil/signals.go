// Package testutil holds deterministic signal generators and assertion
// helpers shared by the DSP and engine tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine returns n samples of a sine at freqHz starting at
// phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// DeterministicNoise returns n samples of uniform white noise in
// [-amplitude, amplitude). The same seed always gives the same signal.
func DeterministicNoise(seed int64, amplitude float64, n int) []float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// Impulse returns n samples that are zero except for a one at pos. An
// out-of-range pos gives silence.
func Impulse(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}

// DC returns n samples of value.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Float32 converts x to host sample format.
func Float32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

// InBlocks hands x to process in consecutive blockSize slices, the last
// one possibly short. process may modify the slices in place.
func InBlocks(x []float64, blockSize int, process func(block []float64)) {
	for len(x) > 0 {
		n := min(blockSize, len(x))
		process(x[:n])
		x = x[n:]
	}
}

// RMS returns the root mean square level of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var energy float64
	for _, v := range x {
		energy += v * v
	}
	return math.Sqrt(energy / float64(len(x)))
}
