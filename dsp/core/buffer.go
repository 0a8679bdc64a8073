package core

// EnsureLen returns buf resliced to n, allocating only when its capacity
// is short. Contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// Zero clears buf.
func Zero(buf []float64) { clear(buf) }

// Widen converts host samples into the processing buffer dst. Frames
// past the end of src read as silence.
func Widen(dst []float64, src []float32) {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		dst[i] = float64(v)
	}
	clear(dst[n:])
}

// Narrow converts processed samples back into host memory. Frames past
// the end of src are silenced.
func Narrow(dst []float32, src []float64) {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		dst[i] = float32(v)
	}
	clear(dst[n:])
}
