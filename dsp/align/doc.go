// Package align is the per-block entry point of the delay corrector.
//
// An Aligner owns one analysis ring, a lag estimator, an adaptive controller
// and one fractional delay line per corrected channel. Each call to Process:
//
//   - snapshots the gate and learning rate from Params,
//   - downmixes the corrected and guide channel groups into two analysis
//     channels and appends them to the ring while the gate is open,
//   - estimates the lag once per hop after the ring has filled and feeds it to
//     the controller,
//   - runs every corrected channel through its delay line in place.
//
// The guide channel is the one that trails; the corrected channels lead and
// are delayed until they line up with it.
//
// Process never allocates, blocks or locks. All sizing happens in Prepare.
// State crosses goroutines only through Params (written by a parameter
// producer, read by Process) and Published/Display (written by Process, read
// by any number of pollers).
package align
