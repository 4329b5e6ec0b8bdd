// Package gamelanizer implements a realtime gamelan-cascade audio effect:
// for every pair of beats in a tempo-annotated monophonic input, it
// produces progressively faster, pitch-shifted echoes of each beat across
// a configurable number of subdivision levels.
//
// The package exposes a single-threaded, sample-synchronous streaming
// Engine driven by a Mixer host shim one block at a time. All buffers are
// preallocated at construction; the audio path never allocates, blocks, or
// errors.
package gamelanizer
