// Package design computes biquad coefficients from musical parameters
// (cutoff or center frequency, gain in dB, Q) using the RBJ cookbook
// formulas, and provides Filter, a section that only recomputes its
// coefficients when those parameters actually change.
package design
