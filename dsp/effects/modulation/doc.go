// Package modulation provides the LFO-driven effects of both chains.
//
// Every LFO phase and delay line persists across blocks, so splitting a
// signal into blocks of any size yields the same output as processing it
// in one piece.
//
// Included processors:
//   - Chorus: single or three-voice modulated delay with a tone filter.
//   - CE2: unipolar-swept vintage chorus.
//   - Flanger: short modulated delay with feedback, in BF-2 and ultra voicings.
//   - Tremolo: LFO amplitude modulation.
//   - WahWah: log-swept band-pass.
package modulation

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
