// Package pitchdetect estimates the fundamental frequency of a monophonic
// block with the YIN algorithm and maps frequencies to equal-tempered note
// names.
//
// The difference function is evaluated through an FFT cross-correlation
// and a running energy sum, so a whole analysis costs two forward FFTs and
// one inverse regardless of the lag range. All buffers are allocated by
// NewEstimator; Estimate itself does not allocate.
package pitchdetect
