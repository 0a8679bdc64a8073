package engine

import (
	"fmt"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
)

const (
	roleInstrument = iota
	roleVoice
	numRoles
)

var roleNames = [numRoles]string{effectchain.Instrument, effectchain.Voice}

func roleOf(channel string) (int, error) {
	switch channel {
	case effectchain.Instrument:
		return roleInstrument, nil
	case effectchain.Voice:
		return roleVoice, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
}

// Mapping assigns a physical input channel to each role. An index past the
// device's input count reads as silence.
type Mapping struct {
	Instrument int `json:"instrument"`
	Voice      int `json:"voice"`
}

// DefaultMapping reads the instrument from input 0 and the voice from 1.
func DefaultMapping() Mapping { return Mapping{Instrument: 0, Voice: 1} }

func (m Mapping) index(role int) int {
	if role == roleVoice {
		return m.Voice
	}
	return m.Instrument
}

// resolve moves the voice to the next input when both roles share one.
// At least two inputs are assumed so the roles never collide.
func (m Mapping) resolve(inputs int) Mapping {
	if m.Voice == m.Instrument {
		m.Voice = (m.Instrument + 1) % max(inputs, 2)
	}
	return m
}

func (m Mapping) validate() error {
	if m.Instrument < 0 || m.Voice < 0 {
		return fmt.Errorf("engine: invalid channel mapping %d/%d", m.Instrument, m.Voice)
	}
	return nil
}
