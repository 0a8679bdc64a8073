// Package pitch provides the pitch tools of both chains.
//
// Included processors:
//   - Tuner: accumulates input into fixed analysis windows, runs YIN on
//     each full window and publishes the reading; its output is silence.
//   - Shifter: dual-head delay-line pitch shifter blended with the dry
//     signal.
//   - Corrector: light smoothing toward a short moving average. It does
//     not lock the voice to a scale.
package pitch

import (
	"fmt"
	"math"
)

func checkSampleRate(name string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be positive and finite: %f", name, sampleRate)
	}
	return nil
}
