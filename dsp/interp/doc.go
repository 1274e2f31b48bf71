// Package interp provides the fractional-read kernels of the correction
// delay line.
//
//   - [Linear2]:  2-point linear, exact at integer positions
//   - [Hermite4]: 4-point cubic Hermite, the default
//
// [Mode] names a kernel so configuration can select one without importing
// the functions directly.
package interp
