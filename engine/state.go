package engine

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
)

// EffectState is the persisted state of one effect. Params holds float64
// for continuous values, bool for switches and string for enum options.
type EffectState struct {
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params"`
}

// MasterState is the persisted master stage.
type MasterState struct {
	Params struct {
		Level float64 `json:"level"`
	} `json:"params"`
}

// InputState records which role inputs are live.
type InputState struct {
	Instrument bool `json:"instrument"`
	Voice      bool `json:"voice"`
}

// OrderState holds the render order of both channels.
type OrderState struct {
	Instrument []string `json:"instrument"`
	Voice      []string `json:"voice"`
}

// State is a full engine snapshot and the preset file format. On load,
// a missing master_volume selects the default level; the other optional
// sections leave the current settings alone.
type State struct {
	Instrument     map[string]EffectState `json:"instrument"`
	Voice          map[string]EffectState `json:"voice"`
	MasterVolume   *MasterState           `json:"master_volume,omitempty"`
	InputEnabled   *InputState            `json:"input_enabled,omitempty"`
	ChainOrder     *OrderState            `json:"chain_order,omitempty"`
	ChannelMapping *Mapping               `json:"channel_mapping,omitempty"`
}

func (s *State) effects(role int) map[string]EffectState {
	if role == roleVoice {
		return s.Voice
	}
	return s.Instrument
}

func (o *OrderState) order(role int) []string {
	if role == roleVoice {
		return o.Voice
	}
	return o.Instrument
}

// PresetIssue describes one part of a preset that was skipped or replaced
// by a default while loading.
type PresetIssue struct {
	Channel string
	Effect  string
	Param   string
	Reason  string
}

func (p PresetIssue) String() string {
	path := p.Channel
	if p.Effect != "" {
		path += "/" + p.Effect
	}
	if p.Param != "" {
		path += "." + p.Param
	}
	return path + ": " + p.Reason
}

// FullState returns a snapshot of every effect, the master level, the
// input switches, the chain orders and the channel mapping.
func (e *Engine) FullState() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Instrument:   make(map[string]EffectState),
		Voice:        make(map[string]EffectState),
		MasterVolume: &MasterState{},
		InputEnabled: &InputState{
			Instrument: e.state.inputs[roleInstrument],
			Voice:      e.state.inputs[roleVoice],
		},
		ChainOrder: &OrderState{
			Instrument: slices.Clone(e.state.orders[roleInstrument]),
			Voice:      slices.Clone(e.state.orders[roleVoice]),
		},
	}
	s.MasterVolume.Params.Level = e.state.master
	mapping := e.state.mapping
	s.ChannelMapping = &mapping

	for role := range numRoles {
		out := s.effects(role)
		for name, fx := range e.state.effects[role] {
			params := make(map[string]any, len(fx.desc.Params))
			for _, def := range fx.desc.Params {
				params[def.Name] = encodeValue(def, fx.params.Get(def))
			}
			out[name] = EffectState{Enabled: fx.enabled, Params: params}
		}
	}

	return s
}

// LoadFullState applies s as one command. Unknown effects and parameters
// are skipped, malformed values fall back to the parameter default, and
// the issues are returned. Parameters missing from an effect entry take
// their defaults; effects missing from s keep their current state.
func (e *Engine) LoadFullState(s State) ([]PresetIssue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var issues []PresetIssue
	cmd := SetFullState{
		master:  DefaultMasterVolume,
		inputs:  e.state.inputs,
		mapping: e.state.mapping,
	}

	for role, channel := range roleNames {
		entries := s.effects(role)
		for _, name := range slices.Sorted(maps.Keys(entries)) {
			fx, ok := e.state.effects[role][name]
			if !ok {
				issues = append(issues, PresetIssue{Channel: channel, Effect: name, Reason: "unknown effect"})
				continue
			}

			entry := entries[name]
			params := fx.desc.DefaultParams()
			for _, key := range slices.Sorted(maps.Keys(entry.Params)) {
				def, ok := fx.desc.Param(key)
				if !ok {
					issues = append(issues, PresetIssue{Channel: channel, Effect: name, Param: key, Reason: "unknown parameter"})
					continue
				}
				v, err := decodeValue(def, entry.Params[key])
				if err != nil {
					issues = append(issues, PresetIssue{Channel: channel, Effect: name, Param: key, Reason: err.Error()})
					continue
				}
				_ = params.Set(def, v)
			}

			cmd.effects = append(cmd.effects, effectUpdate{
				channel: channel,
				effect:  name,
				enabled: entry.Enabled,
				params:  params,
			})
		}

		if s.ChainOrder != nil {
			if order := s.ChainOrder.order(role); order != nil {
				cmd.orders[role] = e.filterOrder(role, order, &issues)
			}
		}
	}

	if s.MasterVolume != nil {
		cmd.master = clampLevel(s.MasterVolume.Params.Level, MaxMasterVolume, DefaultMasterVolume)
	}
	if s.InputEnabled != nil {
		cmd.inputs = [numRoles]bool{s.InputEnabled.Instrument, s.InputEnabled.Voice}
	}
	if s.ChannelMapping != nil {
		if err := s.ChannelMapping.validate(); err != nil {
			issues = append(issues, PresetIssue{Channel: "channel_mapping", Reason: err.Error()})
		} else {
			cmd.mapping = s.ChannelMapping.resolve(e.cfg.InputChannels)
		}
	}

	err := e.send(cmd, func(m *mirror) {
		for _, u := range cmd.effects {
			role, _ := roleOf(u.channel)
			fx := m.effects[role][u.effect]
			fx.enabled = u.enabled
			fx.params = u.params.Clone()
		}
		for role, order := range cmd.orders {
			if order != nil {
				m.orders[role] = slices.Clone(order)
			}
		}
		m.master = cmd.master
		m.inputs = cmd.inputs
		m.mapping = cmd.mapping
	})
	if err != nil {
		return issues, err
	}

	for _, is := range issues {
		e.logger.Warn("preset entry ignored", "issue", is.String())
	}
	return issues, nil
}

func (e *Engine) filterOrder(role int, order []string, issues *[]PresetIssue) []string {
	channel := roleNames[role]
	out := make([]string, 0, len(order))
	for _, name := range order {
		switch {
		case e.state.effects[role][name] == nil:
			*issues = append(*issues, PresetIssue{Channel: channel, Effect: name, Reason: "unknown effect in chain order"})
		case slices.Contains(out, name):
			*issues = append(*issues, PresetIssue{Channel: channel, Effect: name, Reason: "duplicate in chain order"})
		default:
			out = append(out, name)
		}
	}
	return out
}

func encodeValue(def effectchain.ParamDef, v effectchain.Value) any {
	switch def.Kind {
	case effectchain.KindEnum:
		return v.Str
	case effectchain.KindBool:
		return v.Num != 0
	default:
		return v.Num
	}
}

func decodeValue(def effectchain.ParamDef, raw any) (effectchain.Value, error) {
	var v effectchain.Value
	switch def.Kind {
	case effectchain.KindEnum:
		s, ok := raw.(string)
		if !ok {
			return v, fmt.Errorf("want an option name, got %T", raw)
		}
		v = effectchain.Text(s)
	case effectchain.KindBool:
		if b, ok := raw.(bool); ok {
			return effectchain.Bool(b), nil
		}
		f, ok := toFloat(raw)
		if !ok {
			return v, fmt.Errorf("want a bool, got %T", raw)
		}
		v = effectchain.Number(f)
	default:
		f, ok := toFloat(raw)
		if !ok {
			return v, fmt.Errorf("want a number, got %T", raw)
		}
		v = effectchain.Number(f)
	}
	if err := def.Validate(v); err != nil {
		return effectchain.Value{}, err
	}
	return v, nil
}

func toFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// SavePreset writes the full state to path as indented JSON.
func (e *Engine) SavePreset(path string) error {
	data, err := json.MarshalIndent(e.FullState(), "", "  ")
	if err != nil {
		return fmt.Errorf("engine: encode preset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("engine: save preset: %w", err)
	}
	e.logger.Info("preset saved", "path", path)
	return nil
}

// LoadPreset reads a preset written by SavePreset and applies it with
// LoadFullState.
func (e *Engine) LoadPreset(path string) ([]PresetIssue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: load preset: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("engine: parse preset %s: %w", path, err)
	}
	issues, err := e.LoadFullState(s)
	if err == nil {
		e.logger.Info("preset loaded", "path", path, "issues", len(issues))
	}
	return issues, err
}
