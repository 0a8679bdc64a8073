package design

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/filter/biquad"
)

// ButterworthQ is the Q of a maximally flat second-order section.
const ButterworthQ = 1 / math.Sqrt2

// warp holds the bilinear-transform terms shared by every cookbook
// design. ok is false when the sample rate or frequency is unusable, in
// which case every design degrades to biquad.Identity.
type warp struct {
	cos, alpha float64
	ok         bool
}

// newWarp prepares the design at freq. Frequencies outside (0, nyquist)
// are pulled just inside so extreme knob settings stay stable.
func newWarp(freq, q, sampleRate float64) warp {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || math.IsNaN(freq) {
		return warp{}
	}
	if !(q > 0) || math.IsInf(q, 0) {
		q = ButterworthQ
	}
	freq = math.Min(math.Max(freq, 1), 0.49*sampleRate)
	sin, cos := math.Sincos(2 * math.Pi * freq / sampleRate)
	return warp{cos: cos, alpha: sin / (2 * q), ok: true}
}

// shelfAmp is the square root of the linear gain, the cookbook's A.
func shelfAmp(gainDB float64) float64 { return math.Pow(10, gainDB/40) }

// Lowpass designs a second-order lowpass at freq Hz.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	b := (1 - w.cos) / 2
	return normalize([6]float64{b, 2 * b, b, 1 + w.alpha, -2 * w.cos, 1 - w.alpha})
}

// Highpass designs a second-order highpass at freq Hz.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	b := (1 + w.cos) / 2
	return normalize([6]float64{b, -2 * b, b, 1 + w.alpha, -2 * w.cos, 1 - w.alpha})
}

// Bandpass designs a bandpass with unity gain at freq.
func Bandpass(freq, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	return normalize([6]float64{w.alpha, 0, -w.alpha, 1 + w.alpha, -2 * w.cos, 1 - w.alpha})
}

// Peak designs a peaking bell of gainDB at freq.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	a := shelfAmp(gainDB)
	return normalize([6]float64{
		1 + w.alpha*a, -2 * w.cos, 1 - w.alpha*a,
		1 + w.alpha/a, -2 * w.cos, 1 - w.alpha/a,
	})
}

// LowShelf boosts or cuts below freq by gainDB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	a := shelfAmp(gainDB)
	p, m := (a+1)-(a-1)*w.cos, (a+1)+(a-1)*w.cos
	beta := 2 * math.Sqrt(a) * w.alpha
	return normalize([6]float64{
		a * (p + beta), 2 * a * ((a - 1) - (a+1)*w.cos), a * (p - beta),
		m + beta, -2 * ((a - 1) + (a+1)*w.cos), m - beta,
	})
}

// HighShelf boosts or cuts above freq by gainDB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w := newWarp(freq, q, sampleRate)
	if !w.ok {
		return biquad.Identity
	}
	a := shelfAmp(gainDB)
	p, m := (a+1)+(a-1)*w.cos, (a+1)-(a-1)*w.cos
	beta := 2 * math.Sqrt(a) * w.alpha
	return normalize([6]float64{
		a * (p + beta), -2 * a * ((a - 1) + (a+1)*w.cos), a * (p - beta),
		m + beta, 2 * ((a - 1) - (a+1)*w.cos), m - beta,
	})
}

// ButterworthLowpass returns the sections of an even-order Butterworth
// lowpass in cascade order. Odd orders round up; orders below 2 give one
// section.
func ButterworthLowpass(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return AppendButterworthLowpass(nil, freq, order, sampleRate)
}

// AppendButterworthLowpass appends the sections of ButterworthLowpass to
// dst and returns the extended slice. Reusing dst[:0] avoids allocating.
func AppendButterworthLowpass(dst []biquad.Coefficients, freq float64, order int, sampleRate float64) []biquad.Coefficients {
	n := max((order+1)/2, 1)
	for k := range n {
		theta := math.Pi * float64(2*k+1) / float64(4*n)
		dst = append(dst, Lowpass(freq, 1/(2*math.Cos(theta)), sampleRate))
	}
	return dst
}

// normalize divides c = {b0, b1, b2, a0, a1, a2} through by a0.
func normalize(c [6]float64) biquad.Coefficients {
	a0 := c[3]
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity
	}
	return biquad.Coefficients{
		B0: c[0] / a0, B1: c[1] / a0, B2: c[2] / a0,
		A1: c[4] / a0, A2: c[5] / a0,
	}
}
