// Package buffer provides the fixed-capacity storage used on the real-time
// path: a multi-channel Frame for pre-sized scratch blocks and a
// multi-channel Ring that accumulates the most recent samples of every
// analysed channel.
//
// Both types allocate only in their constructors.
package buffer
