package pitchdetect

import (
	"math"
	"testing"
)

func TestFreqToNote(t *testing.T) {
	tests := []struct {
		freq   float64
		name   string
		octave int
		cents  float64
	}{
		{440, "A", 4, 0},
		{261.6256, "C", 4, 0},
		{82.4069, "E", 2, 0},
		{466.1638, "A#", 4, 0},
		{446.0, "A", 4, 23.44},
		{27.5, "A", 0, 0},
	}

	for _, tt := range tests {
		got, ok := FreqToNote(tt.freq)
		if !ok {
			t.Fatalf("FreqToNote(%v) returned no note", tt.freq)
		}
		if got.Name != tt.name || got.Octave != tt.octave {
			t.Fatalf("FreqToNote(%v) = %s%d, want %s%d", tt.freq, got.Name, got.Octave, tt.name, tt.octave)
		}
		if math.Abs(got.Cents-tt.cents) > 0.05 {
			t.Fatalf("FreqToNote(%v) cents = %v, want %v", tt.freq, got.Cents, tt.cents)
		}
	}
}

func TestFreqToNoteRejectsLowAndInvalid(t *testing.T) {
	for _, f := range []float64{0, -440, 20, math.NaN(), math.Inf(1)} {
		if _, ok := FreqToNote(f); ok {
			t.Fatalf("FreqToNote(%v) should report no note", f)
		}
	}
}
