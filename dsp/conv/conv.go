// Package conv provides FFT-based streaming convolution for long impulse
// responses.
//
// Streaming splits the kernel into fixed partitions. The first partition
// is applied in the time domain per sample, so there is no added latency.
// The remaining partitions multiply a frequency-domain delay line of past
// input spectra each time an input partition completes, and the part of
// that result that extends past the next partition is carried as overlap.
// Callers may pass blocks of any length.
//
//	c, _ := conv.NewStreaming(512, 48000*3)
//	_ = c.SetKernel(ir)
//	_ = c.ProcessBlockTo(out, in) // len(in) == len(out), any length
package conv

import (
	"errors"
	"math/bits"
)

var (
	ErrEmptyKernel      = errors.New("conv: empty kernel")
	ErrKernelTooLong    = errors.New("conv: kernel longer than configured capacity")
	ErrLengthMismatch   = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize = errors.New("conv: invalid block size")
)

// nextPowerOf2 returns the smallest power of two >= n, and 1 for n <= 1.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
