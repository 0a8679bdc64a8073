// Package recorder writes the engine output to a WAV file on a background
// goroutine. Blocks travel through lock-free rings in both directions, so
// Submit never blocks, locks or allocates; blocks that find the pool empty
// are dropped and counted.
package recorder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-pedalboard/engine/queue"
)

// ErrClosed is returned by operations on a stopped recorder.
var ErrClosed = errors.New("recorder: closed")

const (
	bitDepth      = 16
	pcmFormat     = 1
	defaultBlocks = 64
	defaultPoll   = 5 * time.Millisecond
)

// State is the recorder transport state.
type State int

const (
	StateRecording State = iota
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "recording"
	}
}

// Status is a snapshot for display.
type Status struct {
	ID      uuid.UUID
	Path    string
	State   State
	Elapsed time.Duration
	Frames  uint64
	Dropped uint64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger for write failures and shutdown.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithQueueDepth sets how many blocks may wait for the writer.
func WithQueueDepth(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.depth = n
		}
	}
}

// WithPollInterval sets how often the writer checks for queued blocks.
func WithPollInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

type block struct {
	data   []float32
	frames int
}

// Recorder is one recording take.
type Recorder struct {
	id         uuid.UUID
	path       string
	sampleRate int
	channels   int
	blockSize  int
	depth      int
	poll       time.Duration
	logger     *slog.Logger
	now        func() time.Time

	// free returns buffers from the writer to Submit; full carries
	// recorded blocks the other way.
	free *queue.SPSC[[]float32]
	full *queue.SPSC[block]
	quit chan struct{}
	done chan struct{}

	out    io.Closer
	enc    *wav.Encoder
	pcm    *audio.IntBuffer
	frames atomic.Uint64

	dropped atomic.Uint64
	paused  atomic.Bool
	closed  atomic.Bool

	mu          sync.Mutex
	started     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	stoppedAt   time.Time
	err         error
	stopOnce    sync.Once
}

// DefaultPath returns dir/take-<id>.wav.
func DefaultPath(dir string, id uuid.UUID) string {
	return filepath.Join(dir, "take-"+id.String()+".wav")
}

// New creates path (or a take-<uuid>.wav file in the working directory
// when path is empty) and starts recording. Blocks carry up to blockSize
// frames of the first channels entries of each Submit.
func New(path string, sampleRate, channels, blockSize int, opts ...Option) (*Recorder, error) {
	r, err := newRecorder(path, sampleRate, channels, blockSize, opts...)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(r.path)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	r.out = f
	r.enc = wav.NewEncoder(f, sampleRate, bitDepth, channels, pcmFormat)

	go r.run()

	r.logger.Info("recording started", "id", r.id, "path", r.path,
		"sample_rate", sampleRate, "channels", channels)

	return r, nil
}

func newRecorder(path string, sampleRate, channels, blockSize int, opts ...Option) (*Recorder, error) {
	if sampleRate <= 0 || channels <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("recorder: invalid format %d Hz, %d channels, %d frames",
			sampleRate, channels, blockSize)
	}

	r := &Recorder{
		id:         uuid.New(),
		path:       path,
		sampleRate: sampleRate,
		channels:   channels,
		blockSize:  blockSize,
		depth:      defaultBlocks,
		poll:       defaultPoll,
		logger:     slog.Default(),
		now:        time.Now,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.path == "" {
		r.path = DefaultPath(".", r.id)
	}

	r.free = queue.NewSPSC[[]float32](r.depth)
	r.full = queue.NewSPSC[block](r.depth)
	for range r.depth {
		r.free.Push(make([]float32, blockSize*channels))
	}
	r.pcm = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, blockSize*channels),
		SourceBitDepth: bitDepth,
	}
	r.started = r.now()

	return r, nil
}

// ID returns the take ID.
func (r *Recorder) ID() uuid.UUID { return r.id }

// Path returns the output file path.
func (r *Recorder) Path() string { return r.path }

// Submit queues one output block without blocking. Channels beyond the
// recorder channel count are ignored; a missing channel repeats the last
// one given. It reports false if the block was dropped or not recorded.
// Submit must always be called from the same goroutine.
func (r *Recorder) Submit(channels [][]float32) bool {
	if r.closed.Load() || r.paused.Load() || len(channels) == 0 {
		return false
	}

	frames := len(channels[0])
	for off := 0; off < frames; off += r.blockSize {
		n := min(r.blockSize, frames-off)

		buf, ok := r.free.Pop()
		if !ok {
			r.dropped.Add(1)
			return false
		}

		for c := range r.channels {
			src := channels[min(c, len(channels)-1)]
			for i := range n {
				buf[i*r.channels+c] = src[off+i]
			}
		}

		if !r.full.Push(block{data: buf, frames: n}) {
			r.dropped.Add(1)
			return false
		}
	}

	return true
}

func (r *Recorder) run() {
	defer close(r.done)

	tick := time.NewTicker(r.poll)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			r.full.Drain(r.write)
		case <-r.quit:
			r.full.Drain(r.write)
			r.finish()
			return
		}
	}
}

func (r *Recorder) write(b block) {
	defer r.free.Push(b.data)

	if r.Err() != nil {
		return
	}

	n := b.frames * r.channels
	for i, v := range b.data[:n] {
		r.pcm.Data[i] = toPCM16(v)
	}
	r.pcm.Data = r.pcm.Data[:n]
	err := r.enc.Write(r.pcm)
	r.pcm.Data = r.pcm.Data[:cap(r.pcm.Data)]

	if err != nil {
		r.fail(fmt.Errorf("recorder: write: %w", err))
		return
	}
	r.frames.Add(uint64(b.frames))
}

func (r *Recorder) finish() {
	if err := r.enc.Close(); err != nil {
		r.fail(fmt.Errorf("recorder: finalize: %w", err))
	}
	if err := r.out.Close(); err != nil {
		r.fail(fmt.Errorf("recorder: close: %w", err))
	}
}

func (r *Recorder) fail(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
	r.logger.Error("recording failed", "id", r.id, "err", err)
}

func toPCM16(v float32) int {
	x := math.Max(-1, math.Min(1, float64(v)))
	return int(math.Round(x * math.MaxInt16))
}

// Pause stops accepting blocks until Resume. Paused time is excluded from
// Elapsed.
func (r *Recorder) Pause() error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused.Load() {
		r.pausedAt = r.now()
		r.paused.Store(true)
	}
	return nil
}

// Resume continues a paused take.
func (r *Recorder) Resume() error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused.Load() {
		r.pausedTotal += r.now().Sub(r.pausedAt)
		r.paused.Store(false)
	}
	return nil
}

// Elapsed returns wall-clock time since start minus paused time.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	end := r.now()
	switch {
	case r.closed.Load():
		end = r.stoppedAt
	case r.paused.Load():
		end = r.pausedAt
	}
	return end.Sub(r.started) - r.pausedTotal
}

// State returns the transport state.
func (r *Recorder) State() State {
	switch {
	case r.closed.Load():
		return StateStopped
	case r.paused.Load():
		return StatePaused
	default:
		return StateRecording
	}
}

// Dropped returns how many blocks were lost to a full queue.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Status returns a snapshot for display.
func (r *Recorder) Status() Status {
	return Status{
		ID:      r.id,
		Path:    r.path,
		State:   r.State(),
		Elapsed: r.Elapsed(),
		Frames:  r.frames.Load(),
		Dropped: r.dropped.Load(),
	}
}

// Err returns the first I/O failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Stop flushes queued blocks, finalizes the file and returns the first
// I/O failure. It is safe to call more than once.
func (r *Recorder) Stop() error {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stoppedAt = r.now()
		if r.paused.Load() {
			r.stoppedAt = r.pausedAt
		}
		r.mu.Unlock()
		r.closed.Store(true)

		close(r.quit)
		<-r.done

		r.logger.Info("recording stopped", "id", r.id, "path", r.path,
			"frames", r.frames.Load(), "dropped", r.dropped.Load())
	})
	return r.Err()
}
