// Package adapt turns raw lag estimates into a smoothed delay setting.
//
// Each update is one step of a first-order exponential smoother:
//
//	next = cur + rate·(lag − cur)
//
// gated by a deadband: when |lag − cur| <= tolerance the delay is left
// untouched, so estimation noise near the target does not cause audible
// jitter. Results are hard-clamped to [0, maxDelay]; the delay never wraps.
package adapt
