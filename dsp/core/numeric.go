package core

import "math"

// denormalFloor is the magnitude below which recursive state is treated
// as silence.
const denormalFloor = 1e-30

// Clamp limits value to [lo, hi]. The bounds may be given in either
// order. NaN maps to the lower bound.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case value < lo || math.IsNaN(value):
		return lo
	case value > hi:
		return hi
	}
	return value
}

// HardClip limits x to full scale. NaN becomes silence.
func HardClip(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}

// ClipBlock hard-clips buf in place.
func ClipBlock(buf []float64) {
	for i := range buf {
		buf[i] = HardClip(buf[i])
	}
}

// MapRange maps value linearly from [fromLo, fromHi] onto [toLo, toHi]
// without clamping. An empty source range yields toLo.
func MapRange(value, fromLo, fromHi, toLo, toHi float64) float64 {
	if fromHi == fromLo {
		return toLo
	}
	t := (value - fromLo) / (fromHi - fromLo)
	return toLo + t*(toHi-toLo)
}

// FlushDenormals returns 0 for values too small to be audible.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// DBToLinear converts an amplitude in decibels to a gain factor.
func DBToLinear(db float64) float64 { return math.Pow(10, db/20) }

// TimeConstant returns the one-pole coefficient exp(-1/(fs*t)) that
// settles to 1-1/e of a step in seconds. Non-positive inputs give 0.
func TimeConstant(seconds, sampleRate float64) float64 {
	if seconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1 / (sampleRate * seconds))
}
