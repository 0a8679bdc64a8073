// Package dynamics provides the level-dependent processors of both chains.
//
// Included processors:
//   - Compressor: feed-forward peak compressor with an optional bright
//     shelf; the vocal variant uses its level knob as direct makeup.
//   - DeEsser: band-limited sibilance detector driving full-band reduction.
//   - NoiseReducer: downward gate that attenuates samples below a threshold.
//   - PopClickSuppressor: high-pass plus isolated-transient repair.
package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
)

func checkSampleRate(name string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be positive and finite: %f", name, sampleRate)
	}
	return nil
}

// compressionGain returns the linear gain for an envelope above a linear
// threshold: the excess in dB is reduced by (1 - 1/ratio).
func compressionGain(env, threshold, ratio float64) float64 {
	if env <= threshold || ratio <= 1 {
		return 1
	}
	excessDB := 20 * math.Log10(env/threshold)
	return core.DBToLinear(-excessDB * (1 - 1/ratio))
}
