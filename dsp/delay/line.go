// Package delay provides the circular sample buffer behind the echo,
// modulation, reverb and pitch-shift effects.
package delay

import (
	"fmt"
	"math"
)

// Line is a fixed-capacity ring of past samples. Tap distances count
// back from the newest sample: Read(1) is the last sample written and
// Read(Len()) the oldest one still held.
type Line struct {
	ring []float64
	head int // index of the newest sample
}

// New returns a line holding size samples of silence.
func New(size int) (*Line, error) {
	if size < 2 {
		return nil, fmt.Errorf("delay: line size must be at least 2, got %d", size)
	}
	return &Line{ring: make([]float64, size), head: size - 1}, nil
}

// NewSeconds sizes a line for maxSeconds at sampleRate, with the two
// spare samples that interpolated reads at the longest delay touch.
func NewSeconds(maxSeconds, sampleRate float64) (*Line, error) {
	return New(int(math.Ceil(maxSeconds*sampleRate)) + 2)
}

// Len reports the capacity in samples.
func (l *Line) Len() int { return len(l.ring) }

// Write pushes x as the newest sample, dropping the oldest.
func (l *Line) Write(x float64) {
	l.head++
	if l.head == len(l.ring) {
		l.head = 0
	}
	l.ring[l.head] = x
}

// Read returns the sample taps positions back. taps is clamped to
// [1, Len()].
func (l *Line) Read(taps int) float64 {
	n := len(l.ring)
	taps = min(max(taps, 1), n)
	i := l.head - taps + 1
	if i < 0 {
		i += n
	}
	return l.ring[i]
}

// ReadFractional interpolates linearly between the two taps around taps.
// taps is clamped to [1, Len()-1]; NaN reads the newest sample.
func (l *Line) ReadFractional(taps float64) float64 {
	if math.IsNaN(taps) {
		taps = 1
	}
	taps = math.Min(math.Max(taps, 1), float64(len(l.ring)-1))

	whole, frac := math.Modf(taps)
	near := l.Read(int(whole))
	if frac == 0 {
		return near
	}
	return near + frac*(l.Read(int(whole)+1)-near)
}

// Process is one step of a feedback delay: it reads the tap at taps,
// writes x plus feedback times that tap, and returns the tap.
func (l *Line) Process(x, taps, feedback float64) float64 {
	y := l.ReadFractional(taps)
	l.Write(x + feedback*y)
	return y
}

// Reset fills the line with silence.
func (l *Line) Reset() {
	clear(l.ring)
	l.head = len(l.ring) - 1
}
