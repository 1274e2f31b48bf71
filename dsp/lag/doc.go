// Package lag estimates the integer sample offset between two equal-length
// windows by scanning an unnormalized cross-correlation.
//
// For every candidate lag l the score is
//
//	score(l) = Σ ref[i]·target[i+l]   over all i with 0 <= i+l < N
//
// The target window is never wrapped or zero-padded: samples beyond the
// window are absent, so the overlap shrinks as |l| grows. The estimate is the
// first candidate (in ascending order) reaching the maximum score.
//
// The score is not normalized. It is not scale-invariant and it favours
// shorter lags with longer overlap.
//
// A positive lag means target trails ref: target[i+lag] ≈ ref[i].
package lag
