package effectchain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrUnknownParam is returned when a parameter key is not part of an
// effect's descriptor.
var ErrUnknownParam = errors.New("unknown parameter")

// ErrInvalidValue is returned when a value does not fit its parameter kind.
var ErrInvalidValue = errors.New("invalid parameter value")

// ParamKind classifies a parameter.
type ParamKind int

const (
	KindContinuous ParamKind = iota
	KindEnum
	KindBool
)

func (k ParamKind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	default:
		return "continuous"
	}
}

// ParamDef describes one parameter. Continuous parameters use Min, Max and
// Default. Enum parameters use Options and DefaultOption. Bool parameters
// use Default as 0 or 1.
type ParamDef struct {
	Name          string
	Kind          ParamKind
	Min, Max      float64
	Default       float64
	Options       []string
	DefaultOption string
}

// Clamp limits v to the parameter range. Bools snap to 0 or 1.
func (d ParamDef) Clamp(v float64) float64 {
	switch d.Kind {
	case KindBool:
		if v != 0 && !math.IsNaN(v) {
			return 1
		}
		return 0
	case KindContinuous:
		if math.IsNaN(v) {
			return d.Default
		}
		return min(max(v, d.Min), d.Max)
	default:
		return v
	}
}

// HasOption reports whether s is one of the enum options.
func (d ParamDef) HasOption(s string) bool {
	return slices.Contains(d.Options, s)
}

// Descriptor is the static metadata of one effect type.
type Descriptor struct {
	Name   string
	Title  string
	Params []ParamDef
}

// Param returns the definition of key.
func (d Descriptor) Param(key string) (ParamDef, bool) {
	for _, p := range d.Params {
		if p.Name == key {
			return p, true
		}
	}
	return ParamDef{}, false
}

// DefaultParams returns a fully populated parameter set for the effect.
func (d Descriptor) DefaultParams() Params {
	p := Params{
		Num: make(map[string]float64, len(d.Params)),
		Str: make(map[string]string),
	}
	for _, def := range d.Params {
		if def.Kind == KindEnum {
			p.Str[def.Name] = def.DefaultOption
			continue
		}
		p.Num[def.Name] = def.Default
	}
	return p
}

// Value is a parameter value. Enum parameters carry Str; continuous and
// bool parameters carry Num.
type Value struct {
	Num float64
	Str string
}

// Number wraps a numeric value.
func Number(v float64) Value { return Value{Num: v} }

// Text wraps an enum option.
func Text(s string) Value { return Value{Str: s} }

// Bool wraps a switch value.
func Bool(b bool) Value {
	if b {
		return Value{Num: 1}
	}
	return Value{}
}

func (v Value) String() string {
	if v.Str != "" {
		return v.Str
	}
	return fmt.Sprintf("%g", v.Num)
}

// Validate reports whether v fits def. Continuous values are not range
// checked; NaN and infinities are rejected.
func (d ParamDef) Validate(v Value) error {
	switch d.Kind {
	case KindEnum:
		if !d.HasOption(v.Str) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, d.Name, v.Str)
		}
	case KindContinuous:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, d.Name, v.Num)
		}
	}
	return nil
}

// Set stores v under def in p, validating it against the definition.
// Continuous values are stored as given; bools snap to 0 or 1.
func (p Params) Set(def ParamDef, v Value) error {
	if err := def.Validate(v); err != nil {
		return err
	}
	switch def.Kind {
	case KindEnum:
		p.Str[def.Name] = v.Str
	case KindBool:
		p.Num[def.Name] = def.Clamp(v.Num)
	default:
		p.Num[def.Name] = v.Num
	}
	return nil
}

// Get returns the stored value for def.
func (p Params) Get(def ParamDef) Value {
	if def.Kind == KindEnum {
		return Value{Str: p.GetStr(def.Name, def.DefaultOption)}
	}
	return Value{Num: p.GetNum(def.Name, def.Default)}
}
