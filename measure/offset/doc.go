// Package offset measures the time offset between two whole recordings.
//
// It is the offline counterpart of the streaming lag estimator: the full
// linear cross-correlation is computed in one FFT pass, the peak is searched
// over a bounded lag range and refined to a fractional lag by parabolic
// interpolation. It is meant for verifying aligned files, not for the audio
// path.
//
// # Usage
//
//	m := offset.NewMeter(48000)
//	res, err := m.Measure(reference, target, 2000)
//	fmt.Printf("target trails by %.2f samples (%.3f ms)\n", res.Precise, res.Ms)
package offset
