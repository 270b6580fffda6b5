// ABOUTME: Block sample rate conversion using linear interpolation
// ABOUTME: Converts interleaved int32 frames between sample rates
// Package resample provides block sample rate conversion.
//
// Conversion is time-invariant: a block of input frames always produces the
// same output for the same rate pair, which keeps the mixer's per-callback
// frame accounting stable.
package resample
