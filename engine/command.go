package engine

import (
	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/engine/track"
)

// Command is one mutation of render-side state. Commands are built and
// validated by the Engine methods and applied by the render goroutine at
// the start of the next block, in submission order.
type Command interface {
	command()
}

// SetParam changes one effect parameter.
type SetParam struct {
	Channel string
	Effect  string
	Key     string
	Value   effectchain.Value
}

// ToggleEffect switches one effect on or off.
type ToggleEffect struct {
	Channel string
	Effect  string
	Enabled bool
}

// SetMasterVolume sets the master gain.
type SetMasterVolume struct {
	Level float64
}

// SetChainOrder replaces a channel's render order. Order is owned by the
// render goroutine once submitted.
type SetChainOrder struct {
	Channel string
	Order   []string
}

// SetChannelMapping assigns physical inputs to the two roles.
type SetChannelMapping struct {
	Mapping Mapping
}

// ToggleInputChannel enables or mutes the input of one role.
type ToggleInputChannel struct {
	Channel string
	Enabled bool
}

// SetFullState applies a validated preset.
type SetFullState struct {
	effects []effectUpdate
	orders  [numRoles][]string
	master  float64
	inputs  [numRoles]bool
	mapping Mapping
}

type effectUpdate struct {
	channel string
	effect  string
	enabled bool
	params  effectchain.Params
}

// SetPlaybackPosition seeks the backing track. Ratio is in [0, 1].
type SetPlaybackPosition struct {
	Ratio float64
}

// LoadTrack replaces the backing track and stops playback.
type LoadTrack struct {
	Track *track.Track
}

// TogglePlayback starts, pauses or resumes the backing track.
type TogglePlayback struct{}

// StopPlayback stops the backing track and rewinds it.
type StopPlayback struct{}

// SetTrackVolume sets the backing-track gain.
type SetTrackVolume struct {
	Level float64
}

// AttachRecorder starts feeding output blocks to Sink.
type AttachRecorder struct {
	Sink Sink
}

// DetachRecorder stops feeding the recorder.
type DetachRecorder struct{}

func (SetParam) command()            {}
func (ToggleEffect) command()        {}
func (SetMasterVolume) command()     {}
func (SetChainOrder) command()       {}
func (SetChannelMapping) command()   {}
func (ToggleInputChannel) command()  {}
func (SetFullState) command()        {}
func (SetPlaybackPosition) command() {}
func (LoadTrack) command()           {}
func (TogglePlayback) command()      {}
func (StopPlayback) command()        {}
func (SetTrackVolume) command()      {}
func (AttachRecorder) command()      {}
func (DetachRecorder) command()      {}

// Sink receives every rendered output block on the render goroutine.
// Submit must not block.
type Sink interface {
	Submit(channels [][]float32) bool
}
