package dynamics

import "github.com/cwbudde/algo-pedalboard/dsp/core"

// NoiseReducerParams configures a NoiseReducer.
type NoiseReducerParams struct {
	Threshold   float64 // linear, 0.001..0.1
	ReductionDB float64 // 6..60
}

// DefaultNoiseReducerParams returns threshold 0.02, 20 dB.
func DefaultNoiseReducerParams() NoiseReducerParams {
	return NoiseReducerParams{Threshold: 0.02, ReductionDB: 20}
}

// NoiseReducer attenuates every sample whose magnitude is below the
// threshold by ReductionDB. It has no state.
type NoiseReducer struct {
	params    NoiseReducerParams
	threshold float64
	floor     float64
}

// NewNoiseReducer creates a noise reducer with default parameters.
func NewNoiseReducer(sampleRate float64) (*NoiseReducer, error) {
	if err := checkSampleRate("noise reducer", sampleRate); err != nil {
		return nil, err
	}

	n := &NoiseReducer{}
	n.SetParams(DefaultNoiseReducerParams())
	return n, nil
}

// SetParams applies p.
func (n *NoiseReducer) SetParams(p NoiseReducerParams) {
	n.params = p
	n.threshold = core.Clamp(p.Threshold, 0.001, 0.1)
	n.floor = core.DBToLinear(-core.Clamp(p.ReductionDB, 6, 60))
}

// Params returns the last applied parameters.
func (n *NoiseReducer) Params() NoiseReducerParams { return n.params }

// ProcessInPlace processes buf in place.
func (n *NoiseReducer) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		if x < n.threshold && x > -n.threshold {
			x *= n.floor
		}
		buf[i] = core.HardClip(x)
	}
}

// Reset is a no-op.
func (n *NoiseReducer) Reset() {}
