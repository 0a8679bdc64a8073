package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// kernel is one loaded impulse response: the first partition as
// time-reversed taps for the direct path, the rest as spectra.
type kernel struct {
	head    []float64      // partition 0 reversed, len P
	headLen int            // nonzero taps at the end of head
	tail    [][]complex128 // spectra of partitions 1.., len capacity-1
	parts   int            // active entries of tail
	taps    int
}

// Streaming is a zero-latency partitioned convolver. The first partition
// of the kernel is applied directly per sample; later partitions run
// through a frequency-domain delay line once per completed input
// partition. Blocks of any length may be passed, and splitting a signal
// into blocks differently never changes the output.
//
// Kernels up to the capacity given at construction can be swapped without
// allocating, either at once with SetKernel or partition by partition
// with StagePartition and CommitStaged.
type Streaming struct {
	size    int // partition length P
	fftSize int // 2P rounded up to a power of two

	plan *algofft.Plan[complex128]

	active, staged *kernel

	line    []float64      // previous input partition, then the one being filled
	fill    int            // samples of the current partition received
	pending []float64      // FFT-path output for the current partition
	overlap []float64      // FFT-path output carried into the next partition
	fdl     [][]complex128 // spectra of completed input partitions
	fdlPos  int            // slot of the newest spectrum

	scratch []complex128
	acc     []complex128
}

// NewStreaming allocates a convolver with partitions of partitionSize
// samples and room for kernels of up to maxKernelLen taps. Until a kernel
// is loaded the convolver outputs silence.
func NewStreaming(partitionSize, maxKernelLen int) (*Streaming, error) {
	if partitionSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, partitionSize)
	}
	if maxKernelLen <= 0 {
		return nil, ErrEmptyKernel
	}

	fftSize := nextPowerOf2(2 * partitionSize)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	capacity := (maxKernelLen + partitionSize - 1) / partitionSize
	s := &Streaming{
		size:    partitionSize,
		fftSize: fftSize,
		plan:    plan,
		active:  newKernel(partitionSize, fftSize, capacity-1),
		staged:  newKernel(partitionSize, fftSize, capacity-1),
		line:    make([]float64, 2*partitionSize),
		pending: make([]float64, partitionSize),
		overlap: make([]float64, partitionSize),
		fdl:     make([][]complex128, capacity-1),
		scratch: make([]complex128, fftSize),
		acc:     make([]complex128, fftSize),
	}
	for i := range s.fdl {
		s.fdl[i] = make([]complex128, fftSize)
	}
	return s, nil
}

func newKernel(size, fftSize, tailParts int) *kernel {
	k := &kernel{head: make([]float64, size), tail: make([][]complex128, tailParts)}
	for i := range k.tail {
		k.tail[i] = make([]complex128, fftSize)
	}
	return k
}

// SetKernel loads a new impulse response and clears all convolution
// state, including the carried tail.
func (s *Streaming) SetKernel(taps []float64) error {
	if len(taps) == 0 {
		return ErrEmptyKernel
	}
	if len(taps) > s.Capacity() {
		return fmt.Errorf("%w: %d taps, capacity %d", ErrKernelTooLong, len(taps), s.Capacity())
	}
	for p := 0; p*s.size < len(taps); p++ {
		start := p * s.size
		if err := s.StagePartition(p, taps[start:min(start+s.size, len(taps))]); err != nil {
			return err
		}
	}
	if err := s.CommitStaged(len(taps)); err != nil {
		return err
	}
	s.Reset()
	return nil
}

// StagePartition writes partition p (taps p*P up to (p+1)*P) of the next
// kernel. The running kernel is not affected until CommitStaged.
func (s *Streaming) StagePartition(p int, taps []float64) error {
	if len(taps) > s.size {
		return fmt.Errorf("%w: partition of %d taps, want at most %d", ErrLengthMismatch, len(taps), s.size)
	}
	if p < 0 || p > len(s.staged.tail) {
		return fmt.Errorf("%w: partition %d", ErrKernelTooLong, p)
	}

	if p == 0 {
		head := s.staged.head
		clear(head)
		for i, v := range taps {
			head[s.size-1-i] = v
		}
		return nil
	}

	spec := s.staged.tail[p-1]
	clear(spec)
	for i, v := range taps {
		spec[i] = complex(v, 0)
	}
	if err := s.plan.Forward(spec, spec); err != nil {
		return fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}
	return nil
}

// CommitStaged makes the staged partitions the running kernel of the
// given length. Every partition up to that length must have been staged
// since the last commit. Input history is kept, so the new kernel
// applies to recent input at once; output still carried from the old
// kernel plays out.
func (s *Streaming) CommitStaged(taps int) error {
	if taps <= 0 {
		return ErrEmptyKernel
	}
	if taps > s.Capacity() {
		return fmt.Errorf("%w: %d taps, capacity %d", ErrKernelTooLong, taps, s.Capacity())
	}
	k := s.staged
	k.taps = taps
	k.headLen = min(taps, s.size)
	k.parts = (taps+s.size-1)/s.size - 1
	s.active, s.staged = k, s.active
	return nil
}

// ProcessBlockTo convolves input into output. The slices must have the
// same length, which may be anything. output may alias input.
func (s *Streaming) ProcessBlockTo(output, input []float64) error {
	if len(output) != len(input) {
		return fmt.Errorf("%w: %d output samples for %d input samples", ErrLengthMismatch, len(output), len(input))
	}

	for i, x := range input {
		s.line[s.size+s.fill] = x

		y := s.pending[s.fill]
		if k := s.active; k.headLen > 0 {
			off := s.size - k.headLen
			window := s.line[s.fill+1+off : s.fill+1+s.size]
			y += vecmath.DotProduct(k.head[off:], window)
		}
		output[i] = y

		s.fill++
		if s.fill == s.size {
			if err := s.advance(); err != nil {
				return err
			}
		}
	}
	return nil
}

// advance runs the frequency-domain part once the current input
// partition is complete and prepares the output of the next one.
func (s *Streaming) advance() error {
	cur := s.line[s.size:]
	k := s.active

	if len(s.fdl) > 0 {
		s.fdlPos++
		if s.fdlPos == len(s.fdl) {
			s.fdlPos = 0
		}
		x := s.fdl[s.fdlPos]
		for i, v := range cur {
			x[i] = complex(v, 0)
		}
		clear(x[s.size:])
		if err := s.plan.Forward(x, x); err != nil {
			return fmt.Errorf("conv: forward FFT failed: %w", err)
		}
	}

	if k.parts == 0 {
		copy(s.pending, s.overlap)
		clear(s.overlap)
	} else {
		clear(s.acc)
		slot := s.fdlPos
		for p := range k.parts {
			h, xp := k.tail[p], s.fdl[slot]
			for i := range s.acc {
				s.acc[i] += xp[i] * h[i]
			}
			slot--
			if slot < 0 {
				slot = len(s.fdl) - 1
			}
		}
		if err := s.plan.Inverse(s.scratch, s.acc); err != nil {
			return fmt.Errorf("conv: inverse FFT failed: %w", err)
		}
		for i := range s.pending {
			s.pending[i] = real(s.scratch[i]) + s.overlap[i]
			s.overlap[i] = real(s.scratch[s.size+i])
		}
	}

	copy(s.line[:s.size], cur)
	s.fill = 0
	return nil
}

// Reset clears the input history and the carried tail. The kernel is kept.
func (s *Streaming) Reset() {
	clear(s.line)
	clear(s.pending)
	clear(s.overlap)
	for _, x := range s.fdl {
		clear(x)
	}
	s.fill = 0
	s.fdlPos = 0
}

// PartitionSize returns the partition length.
func (s *Streaming) PartitionSize() int { return s.size }

// KernelLen returns the running kernel length, or 0.
func (s *Streaming) KernelLen() int { return s.active.taps }

// Capacity returns the longest kernel the convolver accepts.
func (s *Streaming) Capacity() int { return (len(s.fdl) + 1) * s.size }
