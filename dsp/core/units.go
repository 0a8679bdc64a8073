package core

// Live-processing defaults shared by the engine and the effect runtimes.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 512
)

// Samples converts ms milliseconds to a whole number of frames at
// sampleRate. Non-positive inputs give zero.
func Samples(ms, sampleRate float64) int {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(ms*sampleRate/1000 + 0.5)
}
