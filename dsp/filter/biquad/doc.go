// Package biquad runs second-order IIR sections and series cascades of
// them. Coefficients are designed in package design.
//
// Retuning a section never clears its state registers, so effect
// parameters can be swept while audio is flowing.
package biquad
