package effectchain

import (
	"math"
	"testing"
)

func TestParamsGetNumFallsBack(t *testing.T) {
	t.Parallel()

	p := Params{Num: map[string]float64{
		"gain": 0.75, "zero": 0, "negative": -3.5,
		"nan": math.NaN(), "inf": math.Inf(1), "-inf": math.Inf(-1),
	}}

	tests := []struct {
		p    Params
		key  string
		want float64
	}{
		{p, "gain", 0.75},
		{p, "zero", 0},
		{p, "negative", -3.5},
		{p, "missing", 9},
		{p, "nan", 9},
		{p, "inf", 9},
		{p, "-inf", 9},
		{Params{}, "gain", 9},
	}
	for _, tt := range tests {
		if got := tt.p.GetNum(tt.key, 9); got != tt.want {
			t.Errorf("GetNum(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParamsGetStrAndBool(t *testing.T) {
	t.Parallel()

	p := Params{
		Num: map[string]float64{"bright": 1, "off": 0, "bad": math.NaN()},
		Str: map[string]string{"mode": "hall", "empty": ""},
	}

	if got := p.GetStr("mode", "room"); got != "hall" {
		t.Fatalf("GetStr(mode) = %q", got)
	}
	if got := p.GetStr("empty", "room"); got != "room" {
		t.Fatalf("GetStr(empty) = %q, want default", got)
	}
	if !p.GetBool("bright", false) || p.GetBool("off", true) {
		t.Fatal("GetBool did not read stored switches")
	}
	if !p.GetBool("bad", true) || p.GetBool("missing", false) {
		t.Fatal("GetBool did not fall back to default")
	}
}

func TestParamsCloneIsDeep(t *testing.T) {
	t.Parallel()

	p := Params{Num: map[string]float64{"gain": 1}, Str: map[string]string{"mode": "a"}}
	c := p.Clone()
	c.Num["gain"] = 2
	c.Str["mode"] = "b"

	if p.Num["gain"] != 1 || p.Str["mode"] != "a" {
		t.Fatal("Clone shares maps with the original")
	}
	if p.Equal(c) {
		t.Fatal("Equal reported modified clone as equal")
	}
	if !p.Equal(p.Clone()) {
		t.Fatal("Equal rejected a fresh clone")
	}
}
