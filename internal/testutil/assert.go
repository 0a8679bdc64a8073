package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails tb at the first sample where got and
// want differ by more than eps, or when their lengths differ.
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()
	if len(got) != len(want) {
		tb.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i, g := range got {
		if d := math.Abs(g - want[i]); d > eps || math.IsNaN(d) {
			tb.Fatalf("sample %d = %v, want %v (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireFinite fails tb on the first NaN or infinite sample.
func RequireFinite(tb testing.TB, buf []float64) {
	tb.Helper()
	for i, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("sample %d is %v", i, v)
		}
	}
}

// RequireBounded fails tb on the first sample that is NaN or louder than
// limit.
func RequireBounded(tb testing.TB, buf []float64, limit float64) {
	tb.Helper()
	for i, v := range buf {
		if !(math.Abs(v) <= limit) {
			tb.Fatalf("sample %d = %v exceeds ±%v", i, v, limit)
		}
	}
}
