package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when the command queue has no room. The
	// command is discarded and the control-side state is left unchanged.
	ErrQueueFull = errors.New("engine: command queue full")

	// ErrUnknownChannel is returned for a channel other than "instrument"
	// or "voice".
	ErrUnknownChannel = errors.New("engine: unknown channel")

	// ErrUnknownEffect is returned for an effect that is not part of the
	// channel's chain.
	ErrUnknownEffect = errors.New("engine: unknown effect")

	// ErrNotRunning is returned by operations that need an open stream.
	ErrNotRunning = errors.New("engine: not running")

	// ErrAlreadyRunning is returned by Start on a running engine.
	ErrAlreadyRunning = errors.New("engine: already running")

	// ErrNoTrack is returned by track transport without a loaded track.
	ErrNoTrack = errors.New("engine: no track loaded")
)

// DeviceError reports a failure to open, start or stop the audio device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("engine: device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
