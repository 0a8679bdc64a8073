// Package envelope provides an attack/release peak follower.
package envelope

import (
	"math"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
)

// Follower tracks the rectified input level. On each sample the envelope
// moves toward |x| using the attack coefficient when rising and the
// release coefficient when falling.
type Follower struct {
	sampleRate        float64
	attackS, releaseS float64
	attack, release   float64
	env               float64
}

// NewFollower returns a follower with attack and release times in seconds.
func NewFollower(attackS, releaseS, sampleRate float64) *Follower {
	f := &Follower{sampleRate: sampleRate, attackS: -1, releaseS: -1}
	f.SetTimes(attackS, releaseS)
	return f
}

// SetTimes updates the time constants. The envelope value is kept.
func (f *Follower) SetTimes(attackS, releaseS float64) {
	if attackS == f.attackS && releaseS == f.releaseS {
		return
	}
	f.attackS, f.releaseS = attackS, releaseS
	f.attack = core.TimeConstant(attackS, f.sampleRate)
	f.release = core.TimeConstant(releaseS, f.sampleRate)
}

// Process feeds one sample and returns the updated envelope.
func (f *Follower) Process(x float64) float64 {
	r := math.Abs(x)
	c := f.release
	if r > f.env {
		c = f.attack
	}
	f.env = core.FlushDenormals(c*f.env + (1-c)*r)
	return f.env
}

// Value returns the current envelope without advancing it.
func (f *Follower) Value() float64 { return f.env }

// Reset clears the envelope.
func (f *Follower) Reset() { f.env = 0 }
