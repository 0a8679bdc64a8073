// Package host connects the engine render callback to an audio backend.
package host

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-pedalboard/engine"
)

// Backend names accepted by New.
const (
	PortAudio = "portaudio"
	Oto       = "oto"
	Null      = "null"
)

// Names lists the available backends.
func Names() []string { return []string{PortAudio, Oto, Null} }

// New returns the backend called name.
func New(name string, logger *slog.Logger) (engine.Host, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case PortAudio:
		return &PortAudioHost{logger: logger}, nil
	case Oto:
		return &OtoHost{logger: logger}, nil
	case Null:
		return &NullHost{}, nil
	}
	return nil, fmt.Errorf("host: unknown backend %q", name)
}
