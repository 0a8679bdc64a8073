package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pedalboard/internal/testutil"
)

func directConvolve(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h)-1)
	for i, xv := range x {
		for j, hv := range h {
			out[i+j] += xv * hv
		}
	}
	return out
}

func TestStreamingMatchesDirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		blockSize int
		kernelLen int
	}{
		{name: "short kernel", blockSize: 64, kernelLen: 10},
		{name: "exact partitions", blockSize: 32, kernelLen: 128},
		{name: "ragged partitions", blockSize: 48, kernelLen: 301},
		{name: "kernel shorter than capacity", blockSize: 16, kernelLen: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kernel := testutil.DeterministicNoise(11, 0.5, tt.kernelLen)
			input := testutil.DeterministicNoise(5, 1, tt.blockSize*12)
			want := directConvolve(input, kernel)

			c, err := NewStreaming(tt.blockSize, tt.kernelLen*2)
			if err != nil {
				t.Fatalf("NewStreaming() error = %v", err)
			}
			if err := c.SetKernel(kernel); err != nil {
				t.Fatalf("SetKernel() error = %v", err)
			}

			out := make([]float64, len(input))
			for start := 0; start < len(input); start += tt.blockSize {
				blk := out[start : start+tt.blockSize]
				copy(blk, input[start:start+tt.blockSize])
				if err := c.ProcessBlockTo(blk, blk); err != nil {
					t.Fatalf("ProcessBlockTo() error = %v", err)
				}
			}

			for i := range out {
				if math.Abs(out[i]-want[i]) > 1e-9 {
					t.Fatalf("sample %d: got %v, want %v", i, out[i], want[i])
				}
			}
		})
	}
}

func TestStreamingTailCarriesAcrossBlocks(t *testing.T) {
	t.Parallel()

	c, err := NewStreaming(8, 20)
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	kernel := make([]float64, 20)
	kernel[19] = 1
	if err := c.SetKernel(kernel); err != nil {
		t.Fatalf("SetKernel() error = %v", err)
	}

	block := testutil.Impulse(8, 0)
	hit := -1
	for n := range 4 {
		out := make([]float64, 8)
		if err := c.ProcessBlockTo(out, block); err != nil {
			t.Fatalf("ProcessBlockTo() error = %v", err)
		}
		block = make([]float64, 8)
		for i, v := range out {
			if math.Abs(v-1) < 1e-9 {
				hit = n*8 + i
			}
		}
	}
	if hit != 19 {
		t.Fatalf("delayed impulse at %d, want 19", hit)
	}
}

func TestStreamingSetKernelResetsState(t *testing.T) {
	c, err := NewStreaming(4, 8)
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	if err := c.SetKernel([]float64{0, 0, 0, 0, 0, 1}); err != nil {
		t.Fatalf("SetKernel() error = %v", err)
	}
	out := make([]float64, 4)
	_ = c.ProcessBlockTo(out, []float64{1, 1, 1, 1})

	if err := c.SetKernel([]float64{1}); err != nil {
		t.Fatalf("SetKernel() error = %v", err)
	}
	_ = c.ProcessBlockTo(out, make([]float64, 4))
	for i, v := range out {
		if math.Abs(v) > 1e-12 {
			t.Fatalf("stale tail at %d: %v", i, v)
		}
	}
}

func TestStreamingErrors(t *testing.T) {
	if _, err := NewStreaming(0, 10); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("NewStreaming(0) error = %v, want ErrInvalidBlockSize", err)
	}

	c, err := NewStreaming(8, 16)
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	if err := c.SetKernel(nil); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("SetKernel(nil) error = %v, want ErrEmptyKernel", err)
	}
	if err := c.SetKernel(make([]float64, 17)); !errors.Is(err, ErrKernelTooLong) {
		t.Fatalf("SetKernel(17) error = %v, want ErrKernelTooLong", err)
	}
	if err := c.ProcessBlockTo(make([]float64, 8), make([]float64, 7)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("ProcessBlockTo() error = %v, want ErrLengthMismatch", err)
	}

	out := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	if err := c.ProcessBlockTo(out, out); err != nil {
		t.Fatalf("ProcessBlockTo() without kernel error = %v", err)
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("convolver without kernel must output silence")
		}
	}
}

func TestStreamingIrregularBlocksMatchDirect(t *testing.T) {
	t.Parallel()

	kernel := testutil.DeterministicNoise(3, 0.5, 200)
	input := testutil.DeterministicNoise(9, 1, 600)
	want := directConvolve(input, kernel)

	tests := []struct {
		name   string
		blocks []int
	}{
		{name: "single block", blocks: []int{600}},
		{name: "partition halves", blocks: []int{16, 16}},
		{name: "ragged", blocks: []int{1, 31, 7, 64, 3, 300, 212}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewStreaming(32, len(kernel))
			if err != nil {
				t.Fatalf("NewStreaming() error = %v", err)
			}
			if err := c.SetKernel(kernel); err != nil {
				t.Fatalf("SetKernel() error = %v", err)
			}

			out := make([]float64, len(input))
			for start, i := 0, 0; start < len(input); i++ {
				n := min(tt.blocks[i%len(tt.blocks)], len(input)-start)
				if err := c.ProcessBlockTo(out[start:start+n], input[start:start+n]); err != nil {
					t.Fatalf("ProcessBlockTo() error = %v", err)
				}
				start += n
			}
			testutil.RequireSliceNearlyEqual(t, out, want[:len(input)], 1e-9)
		})
	}
}

func TestStreamingCommitStagedKeepsHistory(t *testing.T) {
	t.Parallel()

	c, err := NewStreaming(4, 12)
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	if err := c.SetKernel([]float64{1}); err != nil {
		t.Fatalf("SetKernel() error = %v", err)
	}

	out := make([]float64, 6)
	if err := c.ProcessBlockTo(out, testutil.Impulse(6, 0)); err != nil {
		t.Fatalf("ProcessBlockTo() error = %v", err)
	}

	// Delay of nine samples, staged across two partitions.
	if err := c.StagePartition(0, nil); err != nil {
		t.Fatalf("StagePartition(0) error = %v", err)
	}
	if err := c.StagePartition(1, nil); err != nil {
		t.Fatalf("StagePartition(1) error = %v", err)
	}
	if err := c.StagePartition(2, []float64{0, 1}); err != nil {
		t.Fatalf("StagePartition(2) error = %v", err)
	}
	if c.KernelLen() != 1 {
		t.Fatalf("staging changed the running kernel: len %d", c.KernelLen())
	}
	if err := c.CommitStaged(10); err != nil {
		t.Fatalf("CommitStaged() error = %v", err)
	}

	rest := make([]float64, 6)
	if err := c.ProcessBlockTo(rest, rest); err != nil {
		t.Fatalf("ProcessBlockTo() error = %v", err)
	}
	for i, v := range rest {
		want := 0.0
		if 6+i == 9 {
			want = 1
		}
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v", 6+i, v, want)
		}
	}
}

func TestStreamingProcessDoesNotAllocate(t *testing.T) {
	c, err := NewStreaming(64, 1000)
	if err != nil {
		t.Fatalf("NewStreaming() error = %v", err)
	}
	if err := c.SetKernel(testutil.DeterministicNoise(1, 0.5, 1000)); err != nil {
		t.Fatalf("SetKernel() error = %v", err)
	}
	in := testutil.DeterministicNoise(2, 1, 512)
	out := make([]float64, len(in))

	sizes := []int{512, 488, 1, 100}
	i := 0
	allocs := testing.AllocsPerRun(50, func() {
		n := sizes[i%len(sizes)]
		i++
		_ = c.ProcessBlockTo(out[:n], in[:n])
	})
	if allocs != 0 {
		t.Fatalf("ProcessBlockTo allocated %.1f times per call", allocs)
	}
}
