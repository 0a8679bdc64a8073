// Package engine runs the two effect chains, the backing-track mixer and
// the master stage on the audio callback.
//
// Control goroutines never touch render state. Every mutation is validated,
// recorded in a control-side mirror and pushed onto a bounded
// single-producer queue; the render goroutine drains the queue at the
// start of each block. Queries are answered from the mirror and reflect
// every accepted command immediately.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/dsp/effects/pitch"
	"github.com/cwbudde/algo-pedalboard/engine/queue"
	"github.com/cwbudde/algo-pedalboard/engine/recorder"
	"github.com/cwbudde/algo-pedalboard/engine/track"
)

// StreamConfig is the stream format requested from a Host.
type StreamConfig struct {
	SampleRate     float64
	BlockSize      int
	InputChannels  int
	OutputChannels int
}

// Host drives the render callback from an audio device.
type Host interface {
	Start(cfg StreamConfig, render func(in, out [][]float32)) error
	Stop() error
}

type effectMirror struct {
	desc    effectchain.Descriptor
	enabled bool
	params  effectchain.Params
}

// mirror is the control-side copy of render state.
type mirror struct {
	effects     [numRoles]map[string]*effectMirror
	orders      [numRoles][]string
	master      float64
	inputs      [numRoles]bool
	mapping     Mapping
	trackVolume float64
	track       *track.Track
	tuner       pitch.Reading
	tunerSeen   bool
}

// Engine is a real-time multi-effect processor. Its methods are safe for
// concurrent use, except Render, which belongs to the audio callback.
type Engine struct {
	id     uuid.UUID
	cfg    Config
	logger *slog.Logger

	cmds    *queue.SPSC[Command]
	tuner   queue.Slot[pitch.Reading]
	applyFn func(Command)
	rt      renderer

	// mu serializes producers and guards the mirror.
	mu       sync.Mutex
	state    mirror
	rejected atomic.Uint64

	life    sync.Mutex
	host    Host
	running bool
	rec     *recorder.Recorder
}

// New builds an engine with both default chains, every effect disabled.
func New(opts ...Option) (*Engine, error) {
	o := applyOptions(opts...)

	e := &Engine{
		id:   uuid.New(),
		cfg:  o.cfg,
		cmds: queue.NewSPSC[Command](o.cfg.QueueCapacity),
	}
	e.logger = o.logger.With("session", e.id)

	ctx := effectchain.Context{
		SampleRate:  o.cfg.SampleRate,
		BlockSize:   o.cfg.BlockSize,
		TunerWindow: o.cfg.TunerWindow,
		OnTuner:     func(r pitch.Reading) { e.tuner.TryPublish(r) },
	}

	for role, name := range roleNames {
		ch, err := effectchain.NewChannel(ctx, o.registry, name)
		if err != nil {
			return nil, fmt.Errorf("engine: %s chain: %w", name, err)
		}
		e.rt.chains[role] = ch

		effects := make(map[string]*effectMirror)
		for _, fx := range ch.Names() {
			desc, _ := ch.Descriptor(fx)
			params, _ := ch.Params(fx)
			effects[fx] = &effectMirror{desc: desc, params: params}
		}
		e.state.effects[role] = effects
		e.state.orders[role] = slices.Clone(ch.Order())
	}

	e.state.master = DefaultMasterVolume
	e.state.inputs = [numRoles]bool{true, true}
	e.state.mapping = DefaultMapping().resolve(o.cfg.InputChannels)
	e.state.trackVolume = DefaultTrackVolume

	e.rt.master = e.state.master
	e.rt.inputs = e.state.inputs
	e.rt.mapping = e.state.mapping
	e.rt.play.volume = e.state.trackVolume
	e.rt.ensure(o.cfg.BlockSize)
	e.rt.play.publish()
	e.applyFn = e.rt.apply

	return e, nil
}

// ID returns the session ID.
func (e *Engine) ID() uuid.UUID { return e.id }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Rejected returns how many commands were lost to a full queue.
func (e *Engine) Rejected() uint64 { return e.rejected.Load() }

// send pushes cmd and, on success, applies commit to the mirror. The
// caller holds e.mu.
func (e *Engine) send(cmd Command, commit func(m *mirror)) error {
	if !e.cmds.Push(cmd) {
		e.rejected.Add(1)
		e.logger.Warn("command dropped", "command", fmt.Sprintf("%T", cmd))
		return ErrQueueFull
	}
	if commit != nil {
		commit(&e.state)
	}
	return nil
}

func (e *Engine) effect(channel, effect string) (int, *effectMirror, error) {
	role, err := roleOf(channel)
	if err != nil {
		return 0, nil, err
	}
	fx, ok := e.state.effects[role][effect]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s/%s", ErrUnknownEffect, channel, effect)
	}
	return role, fx, nil
}

// SetParam changes one effect parameter. Continuous values are accepted
// as given and limited to the parameter range by the effect.
func (e *Engine) SetParam(channel, effect, key string, v effectchain.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, fx, err := e.effect(channel, effect)
	if err != nil {
		return err
	}
	def, ok := fx.desc.Param(key)
	if !ok {
		return fmt.Errorf("engine: %w: %s/%s.%s", effectchain.ErrUnknownParam, channel, effect, key)
	}
	if err := def.Validate(v); err != nil {
		return fmt.Errorf("engine: %s/%s: %w", channel, effect, err)
	}

	return e.send(SetParam{Channel: channel, Effect: effect, Key: key, Value: v}, func(*mirror) {
		_ = fx.params.Set(def, v)
	})
}

// ToggleEffect switches one effect on or off.
func (e *Engine) ToggleEffect(channel, effect string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, fx, err := e.effect(channel, effect)
	if err != nil {
		return err
	}
	return e.send(ToggleEffect{Channel: channel, Effect: effect, Enabled: enabled}, func(*mirror) {
		fx.enabled = enabled
	})
}

// SetMasterVolume sets the master gain, limited to [0, MaxMasterVolume].
func (e *Engine) SetMasterVolume(level float64) error {
	level = clampLevel(level, MaxMasterVolume, DefaultMasterVolume)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(SetMasterVolume{Level: level}, func(m *mirror) { m.master = level })
}

// SetChainOrder replaces the render order of channel. Every name must
// belong to the channel and appear at most once; effects left out of the
// order do not run.
func (e *Engine) SetChainOrder(channel string, order []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	role, err := roleOf(channel)
	if err != nil {
		return err
	}
	for i, name := range order {
		if _, ok := e.state.effects[role][name]; !ok {
			return fmt.Errorf("%w: %s/%s", ErrUnknownEffect, channel, name)
		}
		if slices.Contains(order[:i], name) {
			return fmt.Errorf("engine: duplicate effect %q in %s order", name, channel)
		}
	}

	own := slices.Clone(order)
	return e.send(SetChainOrder{Channel: channel, Order: own}, func(m *mirror) {
		m.orders[role] = slices.Clone(own)
	})
}

// SetChannelMapping assigns physical inputs to the instrument and voice
// roles. If both name the same input the voice moves to the next one.
func (e *Engine) SetChannelMapping(instrument, voice int) error {
	m := Mapping{Instrument: instrument, Voice: voice}
	if err := m.validate(); err != nil {
		return err
	}
	m = m.resolve(e.cfg.InputChannels)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(SetChannelMapping{Mapping: m}, func(s *mirror) { s.mapping = m })
}

// ToggleInputChannel enables or mutes the input of one role. A muted role
// still renders its chain over silence.
func (e *Engine) ToggleInputChannel(channel string, enabled bool) error {
	role, err := roleOf(channel)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(ToggleInputChannel{Channel: channel, Enabled: enabled}, func(m *mirror) {
		m.inputs[role] = enabled
	})
}

// LoadTrack replaces the backing track. The track is resampled to the
// engine rate if needed; playback stops.
func (e *Engine) LoadTrack(t *track.Track) error {
	if t == nil || t.Len() == 0 {
		return track.ErrEmpty
	}
	rate := int(e.cfg.SampleRate)
	if t.SampleRate != rate {
		samples, err := track.Resample(t.Samples, t.SampleRate, rate)
		if err != nil {
			return err
		}
		t = track.FromSamples(t.Name, samples, rate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.send(LoadTrack{Track: t}, func(m *mirror) { m.track = t }); err != nil {
		return err
	}
	e.logger.Info("track loaded", "name", t.Name, "duration", t.Duration())
	return nil
}

// LoadTrackFile decodes a WAV or MP3 file and loads it as the backing
// track.
func (e *Engine) LoadTrackFile(path string) error {
	t, err := track.Load(path, int(e.cfg.SampleRate))
	if err != nil {
		return err
	}
	return e.LoadTrack(t)
}

func (e *Engine) transport(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.track == nil {
		return ErrNoTrack
	}
	return e.send(cmd, nil)
}

// TogglePlayback starts, pauses or resumes the backing track.
func (e *Engine) TogglePlayback() error { return e.transport(TogglePlayback{}) }

// StopPlayback stops the backing track and rewinds it.
func (e *Engine) StopPlayback() error { return e.transport(StopPlayback{}) }

// SetPlaybackPosition seeks to ratio of the track length.
func (e *Engine) SetPlaybackPosition(ratio float64) error {
	return e.transport(SetPlaybackPosition{Ratio: min(max(ratio, 0), 1)})
}

// SetTrackVolume sets the backing-track gain, limited to
// [0, MaxTrackVolume].
func (e *Engine) SetTrackVolume(level float64) error {
	level = clampLevel(level, MaxTrackVolume, DefaultTrackVolume)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(SetTrackVolume{Level: level}, func(m *mirror) { m.trackVolume = level })
}

func clampLevel(v, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return min(max(v, 0), hi)
}

// Param returns the current value of one parameter.
func (e *Engine) Param(channel, effect, key string) (effectchain.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, fx, err := e.effect(channel, effect)
	if err != nil {
		return effectchain.Value{}, err
	}
	def, ok := fx.desc.Param(key)
	if !ok {
		return effectchain.Value{}, fmt.Errorf("engine: %w: %s/%s.%s", effectchain.ErrUnknownParam, channel, effect, key)
	}
	return fx.params.Get(def), nil
}

// IsEffectEnabled reports whether an effect is on. Unknown names report
// false.
func (e *Engine) IsEffectEnabled(channel, effect string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, fx, err := e.effect(channel, effect)
	return err == nil && fx.enabled
}

// ChainOrder returns a copy of the render order of channel.
func (e *Engine) ChainOrder(channel string) ([]string, error) {
	role, err := roleOf(channel)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.state.orders[role]), nil
}

// Effects returns the descriptors of every effect in channel, in default
// order.
func (e *Engine) Effects(channel string) ([]effectchain.Descriptor, error) {
	order := effectchain.DefaultOrder(channel)
	if order == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	out := make([]effectchain.Descriptor, 0, len(order))
	for _, name := range order {
		if d, ok := effectchain.Describe(name); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// MasterVolume returns the master gain.
func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.master
}

// TrackVolume returns the backing-track gain.
func (e *Engine) TrackVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.trackVolume
}

// ChannelMapping returns the input assignment.
func (e *Engine) ChannelMapping() Mapping {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.mapping
}

// InputEnabled reports whether the input of channel is live.
func (e *Engine) InputEnabled(channel string) bool {
	role, err := roleOf(channel)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.inputs[role]
}

// Track returns the loaded backing track, or nil.
func (e *Engine) Track() *track.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.track
}

// PlaybackInfo returns the backing-track position as of the last rendered
// block.
func (e *Engine) PlaybackInfo() PlaybackInfo {
	return e.rt.play.info(e.cfg.SampleRate)
}

// TunerReading returns the most recent tuner reading. It reports false
// until the tuner has completed its first window.
func (e *Engine) TunerReading() (pitch.Reading, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.tuner.Take(); ok {
		e.state.tuner = r
		e.state.tunerSeen = true
	}
	return e.state.tuner, e.state.tunerSeen
}

// Start opens the stream on host and begins rendering.
func (e *Engine) Start(host Host) error {
	e.life.Lock()
	defer e.life.Unlock()

	if e.running {
		return ErrAlreadyRunning
	}

	cfg := StreamConfig{
		SampleRate:     e.cfg.SampleRate,
		BlockSize:      e.cfg.BlockSize,
		InputChannels:  e.cfg.InputChannels,
		OutputChannels: e.cfg.OutputChannels,
	}
	if err := host.Start(cfg, e.Render); err != nil {
		e.logger.Error("audio stream failed to start", "err", err)
		return &DeviceError{Op: "start", Err: err}
	}

	e.host = host
	e.running = true
	e.logger.Info("audio stream started",
		"sample_rate", cfg.SampleRate, "block_size", cfg.BlockSize,
		"inputs", cfg.InputChannels, "outputs", cfg.OutputChannels)

	return nil
}

// Running reports whether the stream is open.
func (e *Engine) Running() bool {
	e.life.Lock()
	defer e.life.Unlock()
	return e.running
}

// Stop closes the stream and finalizes an active recording. Stopping a
// stopped engine does nothing.
func (e *Engine) Stop() error {
	e.life.Lock()
	defer e.life.Unlock()

	if !e.running {
		return nil
	}

	var devErr error
	if err := e.host.Stop(); err != nil {
		devErr = &DeviceError{Op: "stop", Err: err}
		e.logger.Error("audio stream failed to stop", "err", err)
	}
	e.host = nil
	e.running = false

	// The callback no longer runs; apply what it left behind.
	e.cmds.Drain(e.applyFn)
	e.rt.sink = nil

	if e.rec != nil {
		if err := e.rec.Stop(); err != nil && devErr == nil {
			devErr = err
		}
		e.rec = nil
	}

	e.logger.Info("audio stream stopped", "rejected_commands", e.rejected.Load())
	return devErr
}

// StartRecording records the master output to path, or to a
// take-<uuid>.wav file in the working directory when path is empty. The
// stream must be running.
func (e *Engine) StartRecording(path string) (*recorder.Recorder, error) {
	e.life.Lock()
	defer e.life.Unlock()

	if !e.running {
		return nil, ErrNotRunning
	}
	if e.rec != nil {
		return e.rec, nil
	}

	rec, err := recorder.New(path, int(e.cfg.SampleRate), e.cfg.OutputChannels, e.cfg.BlockSize,
		recorder.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	err = e.send(AttachRecorder{Sink: rec}, nil)
	e.mu.Unlock()
	if err != nil {
		_ = rec.Stop()
		return nil, err
	}

	e.rec = rec
	return rec, nil
}

// StopRecording finalizes the active recording, if any.
func (e *Engine) StopRecording() error {
	e.life.Lock()
	defer e.life.Unlock()

	rec := e.rec
	if rec == nil {
		return nil
	}
	e.rec = nil

	// A closed recorder ignores blocks, so a full queue here is harmless.
	e.mu.Lock()
	_ = e.send(DetachRecorder{}, nil)
	e.mu.Unlock()

	return rec.Stop()
}

// Recorder returns the active recorder, or nil.
func (e *Engine) Recorder() *recorder.Recorder {
	e.life.Lock()
	defer e.life.Unlock()
	return e.rec
}
