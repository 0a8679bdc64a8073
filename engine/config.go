package engine

import (
	"log/slog"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"
)

// Engine defaults beyond the core processing defaults.
const (
	DefaultInputChannels  = 1
	DefaultOutputChannels = 2
	DefaultQueueCapacity  = 256

	DefaultMasterVolume = 1.0
	MaxMasterVolume     = 2.0
	DefaultTrackVolume  = 0.7
	MaxTrackVolume      = 1.5
)

// Config holds the stream format and queue sizing of an Engine.
type Config struct {
	SampleRate     float64
	BlockSize      int
	InputChannels  int
	OutputChannels int
	QueueCapacity  int
	TunerWindow    int
}

// DefaultConfig returns the live-processing defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:     core.DefaultSampleRate,
		BlockSize:      core.DefaultBlockSize,
		InputChannels:  DefaultInputChannels,
		OutputChannels: DefaultOutputChannels,
		QueueCapacity:  DefaultQueueCapacity,
		TunerWindow:    pitch.DefaultTunerWindow,
	}
}

type options struct {
	cfg      Config
	logger   *slog.Logger
	registry *effectchain.Registry
}

// Option configures an Engine.
type Option func(*options)

// WithConfig replaces the whole configuration. Non-positive fields keep
// their defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		WithSampleRate(cfg.SampleRate)(o)
		WithBlockSize(cfg.BlockSize)(o)
		WithInputChannels(cfg.InputChannels)(o)
		WithOutputChannels(cfg.OutputChannels)(o)
		WithQueueCapacity(cfg.QueueCapacity)(o)
		WithTunerWindow(cfg.TunerWindow)(o)
	}
}

// WithSampleRate sets the stream sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(o *options) {
		if sampleRate > 0 {
			o.cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the nominal frames per callback.
func WithBlockSize(blockSize int) Option {
	return func(o *options) {
		if blockSize > 0 {
			o.cfg.BlockSize = blockSize
		}
	}
}

// WithInputChannels sets the physical input channel count.
func WithInputChannels(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.InputChannels = n
		}
	}
}

// WithOutputChannels sets the physical output channel count.
func WithOutputChannels(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.OutputChannels = n
		}
	}
}

// WithQueueCapacity sets the command queue capacity. It is rounded up to
// a power of two.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.QueueCapacity = n
		}
	}
}

// WithTunerWindow sets the tuner analysis window in samples.
func WithTunerWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.TunerWindow = n
		}
	}
}

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry replaces the effect registry. Every catalog effect of both
// channels must be registered.
func WithRegistry(r *effectchain.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.registry == nil {
		o.registry = effectchain.DefaultRegistry()
	}
	return o
}
