// Package reverb provides the reverbs of both chains.
//
// Included processors:
//   - Reverb: all-pass diffusion into a damped 70 ms feedback loop.
//   - VocalReverb: Schroeder comb/all-pass tail with pre-delay and early
//     reflections.
//   - Convolution: synthetic noise-burst impulse responses run through a
//     streaming FFT convolver.
package reverb

import (
	"fmt"
	"math"
)

func checkSampleRate(name string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", name, sampleRate)
	}
	return nil
}
