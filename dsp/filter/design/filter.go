package design

import "github.com/cwbudde/algo-pedalboard/dsp/filter/biquad"

// Kind selects the response a Filter designs.
type Kind int

const (
	KindPeak Kind = iota
	KindLowShelf
	KindHighShelf
	KindBandpass
	KindLowpass
	KindHighpass
)

// Filter is a biquad section whose coefficients are derived from
// (freq, gainDB, q). Set recomputes coefficients only when one of
// those values differs from the cached design; state is never reset.
type Filter struct {
	biquad.Section

	kind       Kind
	sampleRate float64

	freq, gainDB, q float64
	designed        bool
}

// NewFilter returns a Filter of the given kind, designed for the initial
// parameters.
func NewFilter(kind Kind, sampleRate, freq, gainDB, q float64) *Filter {
	f := &Filter{kind: kind, sampleRate: sampleRate}
	f.Set(freq, gainDB, q)
	return f
}

// Set updates the design parameters. It reports whether the coefficients
// were recomputed.
func (f *Filter) Set(freq, gainDB, q float64) bool {
	if f.designed && freq == f.freq && gainDB == f.gainDB && q == f.q {
		return false
	}

	f.freq, f.gainDB, f.q = freq, gainDB, q
	f.designed = true
	f.SetCoefficients(f.design())

	return true
}

// Freq returns the currently designed frequency.
func (f *Filter) Freq() float64 { return f.freq }

// GainDB returns the currently designed gain.
func (f *Filter) GainDB() float64 { return f.gainDB }

func (f *Filter) design() biquad.Coefficients {
	switch f.kind {
	case KindLowShelf:
		return LowShelf(f.freq, f.gainDB, f.q, f.sampleRate)
	case KindHighShelf:
		return HighShelf(f.freq, f.gainDB, f.q, f.sampleRate)
	case KindBandpass:
		return Bandpass(f.freq, f.q, f.sampleRate)
	case KindLowpass:
		return Lowpass(f.freq, f.q, f.sampleRate)
	case KindHighpass:
		return Highpass(f.freq, f.q, f.sampleRate)
	default:
		return Peak(f.freq, f.gainDB, f.q, f.sampleRate)
	}
}
