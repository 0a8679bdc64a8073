package modulation

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/delay"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/onepole"
	"github.com/cwbudde/algo-pedalboard/dsp/lfo"
)

const (
	chorusCenterSeconds = 0.015
	chorusMaxWidth      = 0.01
	chorusVoices        = 3

	// Tone settings at or above this value bypass the wet low-pass.
	chorusToneBypass = 9.9
)

// ChorusMode selects one or three modulated voices.
type ChorusMode int

const (
	ModeChorus ChorusMode = iota
	ModeTriChorus
)

// String returns the mode name used in presets.
func (m ChorusMode) String() string {
	if m == ModeTriChorus {
		return "tri-chorus"
	}
	return "chorus"
}

// ParseChorusMode maps a preset mode name to a ChorusMode. Unknown names
// fall back to ModeChorus.
func ParseChorusMode(s string) ChorusMode {
	if s == "tri-chorus" {
		return ModeTriChorus
	}
	return ModeChorus
}

// ChorusParams configures a Chorus.
type ChorusParams struct {
	Rate      float64 // Hz, 0.1..10
	Width     float64 // seconds of total sweep, 0.001..0.01
	Intensity float64 // wet share, 0..1
	Tone      float64 // 0..10
	Mode      ChorusMode
}

// DefaultChorusParams returns the instrument chorus defaults.
func DefaultChorusParams() ChorusParams {
	return ChorusParams{Rate: 2, Width: 0.003, Intensity: 0.7, Tone: 5, Mode: ModeChorus}
}

// Chorus reads up to three taps around a 15 ms center delay. The voice LFOs
// sit 120 degrees apart and all keep running in single-voice mode, so
// switching modes does not jump the phases.
type Chorus struct {
	sampleRate float64
	params     ChorusParams

	line   *delay.Line
	voices [chorusVoices]*lfo.LFO
	tone   *onepole.Lowpass

	center    float64
	swing     float64
	intensity float64
	active    int
	toneOn    bool
}

// NewChorus creates a chorus with default parameters.
func NewChorus(sampleRate float64) (*Chorus, error) {
	if err := checkSampleRate("chorus", sampleRate); err != nil {
		return nil, err
	}

	line, err := delay.NewSeconds(chorusCenterSeconds+chorusMaxWidth, sampleRate)
	if err != nil {
		return nil, err
	}

	c := &Chorus{
		sampleRate: sampleRate,
		line:       line,
		tone:       onepole.NewLowpass(15000, sampleRate),
		center:     chorusCenterSeconds * sampleRate,
	}
	for v := range c.voices {
		c.voices[v] = lfo.New(2, sampleRate)
		c.voices[v].SetPhase(2 * math.Pi * float64(v) / chorusVoices)
	}
	c.SetParams(DefaultChorusParams())
	return c, nil
}

// SetParams applies p. LFO phases and the delay line are kept.
func (c *Chorus) SetParams(p ChorusParams) {
	c.params = p
	rate := core.Clamp(p.Rate, 0.1, 10)
	for _, v := range c.voices {
		v.SetRate(rate)
	}
	c.swing = core.Clamp(p.Width, 0.001, chorusMaxWidth) / 2 * c.sampleRate
	c.intensity = core.Clamp(p.Intensity, 0, 1)

	c.active = 1
	if p.Mode == ModeTriChorus {
		c.active = chorusVoices
	}

	tone := core.Clamp(p.Tone, 0, 10)
	c.toneOn = tone < chorusToneBypass
	c.tone.SetCutoff(800 + tone/10*14200)
}

// Params returns the last applied parameters.
func (c *Chorus) Params() ChorusParams { return c.params }

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(x float64) float64 {
	wet := 0.0
	for v, osc := range c.voices {
		mod := osc.Next()
		if v < c.active {
			wet += c.line.ReadFractional(c.center + mod*c.swing)
		}
	}
	wet /= float64(c.active)
	c.line.Write(x)

	if c.toneOn {
		wet = c.tone.ProcessSample(wet)
	}
	return core.HardClip(x*(1-c.intensity) + wet*c.intensity)
}

// ProcessInPlace processes buf in place.
func (c *Chorus) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears the delay line and tone filter and realigns the voices.
func (c *Chorus) Reset() {
	c.line.Reset()
	c.tone.Reset()
	for v, osc := range c.voices {
		osc.SetPhase(2 * math.Pi * float64(v) / chorusVoices)
	}
}

const (
	ce2BaseMs  = 1.0
	ce2SweepMs = 6.0
)

// CE2Params configures a CE2.
type CE2Params struct {
	Rate  float64 // Hz, 0.1..10
	Depth float64 // 0..1
	Level float64 // 0..2
}

// DefaultCE2Params returns rate 4, depth 0.75, level 1.
func DefaultCE2Params() CE2Params {
	return CE2Params{Rate: 4, Depth: 0.75, Level: 1}
}

// CE2 is a vintage chorus: a unipolar LFO sweeps a 1..7 ms tap that is
// mixed half and half with the dry signal.
type CE2 struct {
	sampleRate float64
	params     CE2Params

	line  *delay.Line
	osc   *lfo.LFO
	sweep float64
	level float64
}

// NewCE2 creates the chorus with default parameters.
func NewCE2(sampleRate float64) (*CE2, error) {
	if err := checkSampleRate("ce2 chorus", sampleRate); err != nil {
		return nil, err
	}

	line, err := delay.NewSeconds((ce2BaseMs+ce2SweepMs)/1000, sampleRate)
	if err != nil {
		return nil, err
	}

	c := &CE2{sampleRate: sampleRate, line: line, osc: lfo.New(4, sampleRate)}
	c.SetParams(DefaultCE2Params())
	return c, nil
}

// SetParams applies p. The LFO phase is kept.
func (c *CE2) SetParams(p CE2Params) {
	c.params = p
	c.osc.SetRate(core.Clamp(p.Rate, 0.1, 10))
	c.sweep = ce2SweepMs * core.Clamp(p.Depth, 0, 1)
	c.level = core.Clamp(p.Level, 0, 2)
}

// Params returns the last applied parameters.
func (c *CE2) Params() CE2Params { return c.params }

// ProcessSample processes one sample.
func (c *CE2) ProcessSample(x float64) float64 {
	ms := ce2BaseMs + c.osc.NextUnipolar()*c.sweep
	delayed := c.line.ReadFractional(ms / 1000 * c.sampleRate)
	c.line.Write(x)
	return core.HardClip((0.5*x + 0.5*delayed) * c.level)
}

// ProcessInPlace processes buf in place.
func (c *CE2) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears the delay line and restarts the LFO.
func (c *CE2) Reset() {
	c.line.Reset()
	c.osc.Reset()
}
