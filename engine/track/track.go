// Package track loads backing tracks for the engine's player. Tracks are
// decoded, mixed down to mono and converted to the engine rate up front,
// so playback is a plain slice read.
package track

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dh1tw/gosamplerate"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("track: unsupported format")
	// ErrEmpty is returned when a file decodes to no samples.
	ErrEmpty = errors.New("track: no audio data")
)

// Converter selects the libsamplerate converter used on load: 1 is the
// medium quality sinc converter.
const Converter = 1

// Track is decoded mono audio at a fixed rate. It is never modified after
// loading and may be shared with the render goroutine.
type Track struct {
	Name       string
	Samples    []float32
	SampleRate int
}

// FromSamples wraps already decoded mono samples.
func FromSamples(name string, samples []float32, sampleRate int) *Track {
	return &Track{Name: name, Samples: samples, SampleRate: sampleRate}
}

// Len returns the length in samples.
func (t *Track) Len() int { return len(t.Samples) }

// Duration returns the playing time.
func (t *Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(t.Samples)) * time.Second / time.Duration(t.SampleRate)
}

// Load decodes path and converts it to sampleRate.
func Load(path string, sampleRate int) (*Track, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("track: invalid sample rate %d", sampleRate)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}
	defer f.Close()

	var (
		mono []float32
		rate int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		mono, rate, err = decodeWAV(f)
	case ".mp3":
		mono, rate, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("track: decode %s: %w", filepath.Base(path), err)
	}
	if len(mono) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, filepath.Base(path))
	}

	mono, err = Resample(mono, rate, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Track{Name: filepath.Base(path), Samples: mono, SampleRate: sampleRate}, nil
}

// Resample converts mono samples from one rate to another.
func Resample(samples []float32, from, to int) ([]float32, error) {
	if from == to {
		return samples, nil
	}
	ratio := float64(to) / float64(from)
	if !gosamplerate.IsValidRatio(ratio) {
		return nil, fmt.Errorf("track: cannot convert %d Hz to %d Hz", from, to)
	}
	out, err := gosamplerate.Simple(samples, ratio, 1, Converter)
	if err != nil {
		return nil, fmt.Errorf("track: resample: %w", err)
	}
	return out, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if channels <= 0 || depth <= 0 {
		return nil, 0, fmt.Errorf("bad WAV format: %d channels, %d bit", channels, depth)
	}
	scale := 1 / math.Pow(2, float64(depth-1))
	// 8-bit PCM is unsigned around 128.
	bias := 0
	if depth == 8 {
		bias = 128
	}

	frames := len(buf.Data) / channels
	mono := make([]float32, frames)
	for i := range mono {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c] - bias
		}
		mono[i] = float32(float64(sum) / float64(channels) * scale)
	}

	return mono, int(dec.SampleRate), nil
}

// decodeMP3 reads the decoder's 16-bit little-endian stereo stream.
func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, err
	}

	const frameBytes = 4
	mono := make([]float32, len(raw)/frameBytes)
	for i := range mono {
		left := int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*frameBytes+2:]))
		mono[i] = float32((float64(left) + float64(right)) / 2 / 32768)
	}

	return mono, dec.SampleRate(), nil
}
