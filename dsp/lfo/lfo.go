// Package lfo provides a phase-continuous sine oscillator for modulation
// effects. The only state is the phase accumulator, which must persist
// across blocks; re-creating or resetting an LFO per block is audible as
// a click at every block boundary.
package lfo

import "math"

const twoPi = 2 * math.Pi

// LFO is a sine oscillator with a phase accumulator in radians.
type LFO struct {
	sampleRate float64
	rate       float64
	phase      float64
	inc        float64
}

// New returns an LFO at rateHz starting at phase 0.
func New(rateHz, sampleRate float64) *LFO {
	l := &LFO{sampleRate: sampleRate}
	l.SetRate(rateHz)
	return l
}

// SetRate changes the frequency without touching the phase.
func (l *LFO) SetRate(rateHz float64) {
	if math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
		rateHz = 0
	}
	l.rate = rateHz
	if l.sampleRate > 0 {
		l.inc = twoPi * rateHz / l.sampleRate
	}
}

// Rate returns the frequency in Hz.
func (l *LFO) Rate() float64 { return l.rate }

// Phase returns the current phase in [0, 2π).
func (l *LFO) Phase() float64 { return l.phase }

// SetPhase sets the phase, wrapped into [0, 2π).
func (l *LFO) SetPhase(phase float64) {
	l.phase = wrap(phase)
}

// Next returns sin(phase) and advances the phase by one sample.
func (l *LFO) Next() float64 {
	out := math.Sin(l.phase)
	l.advance()
	return out
}

// NextUnipolar returns (sin(phase)+1)/2 in [0, 1] and advances.
func (l *LFO) NextUnipolar() float64 {
	return (l.Next() + 1) / 2
}

// Skip advances the phase by n samples without producing output.
func (l *LFO) Skip(n int) {
	l.phase = wrap(l.phase + l.inc*float64(n))
}

// Reset returns the phase to zero.
func (l *LFO) Reset() { l.phase = 0 }

func (l *LFO) advance() {
	l.phase += l.inc
	if l.phase >= twoPi || l.phase < 0 {
		l.phase = wrap(l.phase)
	}
}

func wrap(phase float64) float64 {
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	return phase
}
