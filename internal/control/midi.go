package control

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/engine"
)

// Target selects what a control change drives.
type Target int

const (
	TargetParam Target = iota
	TargetToggle
	TargetMaster
	TargetTrackVolume
	TargetPlayback
)

// Binding maps one controller number to an engine control.
type Binding struct {
	Target  Target
	Channel string
	Effect  string
	Param   string
}

// MIDIMap routes control-change messages to the engine. It is safe for
// concurrent use.
type MIDIMap struct {
	mu       sync.Mutex
	bindings map[uint8]Binding
	last     map[uint8]uint8
}

// NewMIDIMap returns an empty map.
func NewMIDIMap() *MIDIMap {
	return &MIDIMap{bindings: make(map[uint8]Binding), last: make(map[uint8]uint8)}
}

// DefaultMIDIMap binds the usual expression-pedal and footswitch
// controllers: CC 7 master volume, CC 11 wah sweep, CC 4 track volume,
// CC 64 overdrive on/off, CC 65 delay on/off, CC 80 tuner and CC 81
// track play/pause.
func DefaultMIDIMap() *MIDIMap {
	m := NewMIDIMap()
	_ = m.Bind(7, Binding{Target: TargetMaster})
	_ = m.Bind(4, Binding{Target: TargetTrackVolume})
	_ = m.Bind(11, Binding{Target: TargetParam, Channel: effectchain.Instrument, Effect: "wahwah", Param: "min_freq"})
	_ = m.Bind(64, Binding{Target: TargetToggle, Channel: effectchain.Instrument, Effect: "overdrive"})
	_ = m.Bind(65, Binding{Target: TargetToggle, Channel: effectchain.Instrument, Effect: "delay"})
	_ = m.Bind(80, Binding{Target: TargetToggle, Channel: effectchain.Instrument, Effect: effectchain.TunerEffect})
	_ = m.Bind(81, Binding{Target: TargetPlayback})
	return m
}

// Bind assigns controller cc. Parameter bindings must name a catalog
// parameter.
func (m *MIDIMap) Bind(cc uint8, b Binding) error {
	if cc > 127 {
		return fmt.Errorf("control: controller %d out of range", cc)
	}
	switch b.Target {
	case TargetParam:
		d, ok := effectchain.Describe(b.Effect)
		if !ok {
			return fmt.Errorf("control: %w: %s", engine.ErrUnknownEffect, b.Effect)
		}
		if _, ok := d.Param(b.Param); !ok {
			return fmt.Errorf("control: %w: %s.%s", effectchain.ErrUnknownParam, b.Effect, b.Param)
		}
	case TargetToggle:
		if _, ok := effectchain.Describe(b.Effect); !ok {
			return fmt.Errorf("control: %w: %s", engine.ErrUnknownEffect, b.Effect)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[cc] = b
	return nil
}

// Binding returns the binding of cc.
func (m *MIDIMap) Binding(cc uint8) (Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[cc]
	return b, ok
}

// ScaleCC maps a 7-bit controller value onto def. Enums split the range
// evenly between options; switches turn on at 64.
func ScaleCC(def effectchain.ParamDef, value uint8) effectchain.Value {
	value = min(value, 127)
	switch def.Kind {
	case effectchain.KindEnum:
		if len(def.Options) == 0 {
			return effectchain.Text(def.DefaultOption)
		}
		i := int(value) * len(def.Options) / 128
		return effectchain.Text(def.Options[i])
	case effectchain.KindBool:
		return effectchain.Bool(value >= 64)
	}
	return effectchain.Number(def.Min + (def.Max-def.Min)*float64(value)/127)
}

// Apply handles one control change. Unbound controllers are ignored.
// Switch-like targets act on the rising edge past 64.
func (m *MIDIMap) Apply(e *engine.Engine, cc, value uint8) error {
	m.mu.Lock()
	b, ok := m.bindings[cc]
	prev := m.last[cc]
	m.last[cc] = value
	m.mu.Unlock()

	if !ok {
		return nil
	}
	rising := value >= 64 && prev < 64

	switch b.Target {
	case TargetMaster:
		return e.SetMasterVolume(engine.MaxMasterVolume * float64(value) / 127)
	case TargetTrackVolume:
		return e.SetTrackVolume(engine.MaxTrackVolume * float64(value) / 127)
	case TargetToggle:
		if !rising {
			return nil
		}
		return e.ToggleEffect(b.Channel, b.Effect, !e.IsEffectEnabled(b.Channel, b.Effect))
	case TargetPlayback:
		if !rising {
			return nil
		}
		return e.TogglePlayback()
	default:
		d, _ := effectchain.Describe(b.Effect)
		def, _ := d.Param(b.Param)
		return e.SetParam(b.Channel, b.Effect, b.Param, ScaleCC(def, value))
	}
}

// ListenMIDI opens the first MIDI input whose name contains port (any
// input when port is empty) and feeds its control changes to m. The
// returned function closes the port.
func ListenMIDI(e *engine.Engine, m *MIDIMap, port string, logger *slog.Logger) (func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("control: midi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("control: list midi inputs: %w", err)
	}

	var in drivers.In
	for _, candidate := range ins {
		if port == "" || strings.Contains(candidate.String(), port) {
			in = candidate
			break
		}
	}
	if in == nil {
		drv.Close()
		return nil, errors.New("control: no matching midi input")
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("control: open %s: %w", in, err)
	}

	name := in.String()
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var ch, cc, val uint8
		if !msg.GetControlChange(&ch, &cc, &val) {
			return
		}
		logger.Debug("midi control change", "channel", ch, "cc", cc, "value", val)
		if err := m.Apply(e, cc, val); err != nil {
			logger.Warn("midi control change rejected", "cc", cc, "err", err)
		}
	}, midi.HandleError(func(err error) {
		logger.Warn("midi listener error", "device", name, "err", err)
	}))
	if err != nil {
		_ = in.Close()
		drv.Close()
		return nil, fmt.Errorf("control: listen %s: %w", name, err)
	}

	logger.Info("midi input connected", "device", name)
	return func() {
		stop()
		_ = in.Close()
		drv.Close()
		logger.Info("midi input closed", "device", name)
	}, nil
}
