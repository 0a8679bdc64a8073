package effectchain

import (
	"maps"
	"math"
)

// Params holds the current parameter values of one effect instance.
// Enum values live in Str, everything else in Num.
type Params struct {
	Num map[string]float64
	Str map[string]string
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetStr returns an enum parameter, or def if missing.
func (p Params) GetStr(key, def string) string {
	v, ok := p.Str[key]
	if !ok || v == "" {
		return def
	}
	return v
}

// GetBool returns a switch parameter; any non-zero value is true.
func (p Params) GetBool(key string, def bool) bool {
	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) {
		return def
	}
	return v != 0
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	return Params{Num: maps.Clone(p.Num), Str: maps.Clone(p.Str)}
}

// Equal reports whether both sets hold the same values.
func (p Params) Equal(o Params) bool {
	return maps.Equal(p.Num, o.Num) && maps.Equal(p.Str, o.Str)
}
