package pitch

import (
	"fmt"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/pitchdetect"
)

// DefaultTunerWindow is the analysis window in samples.
const DefaultTunerWindow = 8192

// Reading is one tuner measurement. Valid is false when the window was
// silent or had no detectable pitch.
type Reading struct {
	pitchdetect.Note
	Valid bool
}

// String returns the note with octave, or "--" for an invalid reading.
func (r Reading) String() string {
	if !r.Valid {
		return "--"
	}
	return r.Note.String()
}

// Tuner collects input until a full analysis window is available, then
// estimates the pitch once and hands the reading to publish. Publish is
// called on the processing goroutine and must not block.
type Tuner struct {
	est     *pitchdetect.Estimator
	window  []float64
	filled  int
	publish func(Reading)
	last    Reading
}

// NewTuner creates a tuner with the given analysis window. A nil publish
// only updates Last.
func NewTuner(sampleRate float64, window int, publish func(Reading)) (*Tuner, error) {
	if err := checkSampleRate("tuner", sampleRate); err != nil {
		return nil, err
	}
	est, err := pitchdetect.NewEstimator(sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}
	return &Tuner{
		est:     est,
		window:  make([]float64, window),
		publish: publish,
	}, nil
}

// Analyze feeds buf into the analysis window without modifying it. It
// reports whether a reading was produced.
func (t *Tuner) Analyze(buf []float64) bool {
	produced := false
	for len(buf) > 0 {
		n := copy(t.window[t.filled:], buf)
		t.filled += n
		buf = buf[n:]
		if t.filled < len(t.window) {
			break
		}

		t.filled = 0
		t.last = Reading{}
		if note, ok := pitchdetect.FreqToNote(t.est.Estimate(t.window)); ok {
			t.last = Reading{Note: note, Valid: true}
		}
		if t.publish != nil {
			t.publish(t.last)
		}
		produced = true
	}
	return produced
}

// ProcessInPlace analyzes buf and replaces it with silence.
func (t *Tuner) ProcessInPlace(buf []float64) {
	t.Analyze(buf)
	core.Zero(buf)
}

// Last returns the most recent reading.
func (t *Tuner) Last() Reading { return t.last }

// Pending returns how many samples are buffered toward the next window.
func (t *Tuner) Pending() int { return t.filled }

// Reset discards the partial window.
func (t *Tuner) Reset() {
	t.filled = 0
	t.last = Reading{}
}
