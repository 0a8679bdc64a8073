package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-pedalboard/engine"
)

// PortAudioHost runs a full-duplex stream on the default devices. The
// callback receives non-interleaved buffers.
type PortAudioHost struct {
	logger *slog.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
}

// Start initializes PortAudio and opens the default duplex stream.
func (h *PortAudioHost) Start(cfg engine.StreamConfig, render func(in, out [][]float32)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream != nil {
		return errors.New("host: portaudio stream already open")
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("host: portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(cfg.InputChannels, cfg.OutputChannels,
		cfg.SampleRate, cfg.BlockSize, render)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("host: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("host: start stream: %w", err)
	}

	h.stream = stream
	h.logger.Debug("portaudio stream open", "latency_in", stream.Info().InputLatency,
		"latency_out", stream.Info().OutputLatency)

	return nil
}

// Stop stops and closes the stream and releases PortAudio.
func (h *PortAudioHost) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream == nil {
		return nil
	}
	err := errors.Join(h.stream.Stop(), h.stream.Close(), portaudio.Terminate())
	h.stream = nil
	return err
}
