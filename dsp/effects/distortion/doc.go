// Package distortion provides the drive pedals of the instrument chain.
//
// All pedals share one Pipeline: optional pre-filters, input drive, a
// waveshaper, optional tone filters, an optional dry blend, output level
// and a final hard clip. The pedals differ only in which stages they
// install and how their knobs map onto them.
//
// Included processors:
//   - Overdrive: high-passed tanh drive with a sweepable low-pass tone.
//   - Distortion: hard-clipping drive.
//   - Fuzz: hard clip blended with the dry signal.
//   - Vintage: tanh drive into a one-pole tone control.
//   - Carmilla: shelf-voiced asymmetric clipper.
//   - PureSky: transparent drive with bass and treble trims.
package distortion
