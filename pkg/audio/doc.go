// ABOUTME: Audio fundamentals package providing formats and mixing primitives
// ABOUTME: Defines Encoding, Format and the 32-bit accumulator operations
// Package audio provides the fundamental types and conversion primitives for
// the mixing engine.
//
// This package defines the core types used throughout the mixforge library:
//   - Encoding: how one PCM sample is stored (depth, signedness, byte order)
//   - Format: a stream description (frequency, encoding, channel count)
//   - Converter: a reusable descriptor rewriting data between two formats
//
// It also provides the accumulator operations the mixer is built from:
//   - Mix, VolumeScale, DivideAccumulator over int32 summing buffers
//   - ConvertMix and ConvertAcc crossing between raw PCM and the accumulator
//
// Example:
//
//	fmt := audio.Format{Freq: 22050, Enc: audio.S16, Channels: 2}
//	acc := make([]int32, 1024)
//	audio.ConvertMix(acc, raw, 1024, fmt.Enc, audio.MaxVolume)
package audio
