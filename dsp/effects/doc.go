// Package effects provides the pedalboard effect units.
//
// Every unit follows the same shape: a typed parameter struct with a
// Default constructor, SetParams to apply new values without resetting
// audio state, ProcessInPlace for one block, and Reset. Units never
// validate parameters; out-of-range values are clamped and outputs are
// hard-clipped to [-1, 1].
//
// Included processor families:
//   - Delay: feedback echo (root package).
//   - distortion: overdrive, distortion, fuzz and amp-style drives.
//   - modulation: chorus, flangers, tremolo and wah.
//   - dynamics: compressors, de-esser, noise reducer and click suppressor.
//   - reverb: algorithmic and convolution reverbs.
//   - pitch: tuner capture, pitch shifting and pitch correction.
//   - eq: multi-band graphic equalizers.
package effects
