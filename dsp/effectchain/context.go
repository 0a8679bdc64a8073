package effectchain

import "github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"

// Context provides environmental information that effect runtimes need.
type Context struct {
	SampleRate float64
	BlockSize  int

	// TunerWindow is the tuner analysis window in samples. Zero selects
	// pitch.DefaultTunerWindow.
	TunerWindow int
	// OnTuner receives tuner readings on the render goroutine. It must not
	// block.
	OnTuner func(pitch.Reading)
}
