// Package eq provides the multi-band graphic equalizers of both chains.
package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
	"github.com/cwbudde/algo-pedalboard/dsp/filter/design"
)

const (
	// BandQ is the quality factor of every peaking band.
	BandQ = 1.4

	MinGainDB = -15.0
	MaxGainDB = 15.0
)

// Band names one peaking band. Name is the parameter key used in presets.
type Band struct {
	Name string
	Freq float64
}

// InstrumentBands are the seven octave-spaced bands of the instrument EQ.
var InstrumentBands = []Band{
	{Name: "band_100hz", Freq: 100},
	{Name: "band_200hz", Freq: 200},
	{Name: "band_400hz", Freq: 400},
	{Name: "band_800hz", Freq: 800},
	{Name: "band_1.6khz", Freq: 1600},
	{Name: "band_3.2khz", Freq: 3200},
	{Name: "band_6.4khz", Freq: 6400},
}

// VocalBands are the ten bands of the vocal EQ.
var VocalBands = []Band{
	{Name: "band_60hz", Freq: 60},
	{Name: "band_125hz", Freq: 125},
	{Name: "band_250hz", Freq: 250},
	{Name: "band_500hz", Freq: 500},
	{Name: "band_1khz", Freq: 1000},
	{Name: "band_2khz", Freq: 2000},
	{Name: "band_4khz", Freq: 4000},
	{Name: "band_6khz", Freq: 6000},
	{Name: "band_8khz", Freq: 8000},
	{Name: "band_12khz", Freq: 12000},
}

// Graphic is a cascade of peaking filters, one per band. Bands at 0 dB are
// skipped entirely. Gain changes redesign only the affected band and keep
// its state.
type Graphic struct {
	bands   []Band
	filters []*design.Filter
	gains   []float64
}

// NewGraphic creates a flat equalizer over bands.
func NewGraphic(sampleRate float64, bands []Band) (*Graphic, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("equalizer sample rate must be > 0 and finite: %f", sampleRate)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("equalizer needs at least one band")
	}

	g := &Graphic{
		bands:   bands,
		filters: make([]*design.Filter, len(bands)),
		gains:   make([]float64, len(bands)),
	}
	for i, b := range bands {
		g.filters[i] = design.NewFilter(design.KindPeak, sampleRate, b.Freq, 0, BandQ)
	}
	return g, nil
}

// Bands returns the band layout.
func (g *Graphic) Bands() []Band { return g.bands }

// Gains returns the current per-band gains in dB. The slice is owned by
// the equalizer.
func (g *Graphic) Gains() []float64 { return g.gains }

// SetGain sets band i to gainDB, clamped to ±15 dB.
func (g *Graphic) SetGain(i int, gainDB float64) {
	if i < 0 || i >= len(g.gains) {
		return
	}
	gainDB = core.Clamp(gainDB, MinGainDB, MaxGainDB)
	if g.gains[i] == 0 && gainDB != 0 {
		g.filters[i].Reset()
	}
	g.gains[i] = gainDB
	g.filters[i].Set(g.bands[i].Freq, gainDB, BandQ)
}

// SetGains applies gains in band order. Missing trailing entries are
// left unchanged.
func (g *Graphic) SetGains(gains []float64) {
	for i, v := range gains {
		g.SetGain(i, v)
	}
}

// ProcessInPlace equalizes buf in place.
func (g *Graphic) ProcessInPlace(buf []float64) {
	for i, f := range g.filters {
		if g.gains[i] != 0 {
			f.ProcessBlock(buf)
		}
	}
	core.ClipBlock(buf)
}

// Reset clears every band's state.
func (g *Graphic) Reset() {
	for _, f := range g.filters {
		f.Reset()
	}
}
