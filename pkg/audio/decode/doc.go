// ABOUTME: Audio decoder package for multiple container formats
// ABOUTME: Provides the Decoder interface and PCM, WAV, MP3, FLAC, Vorbis adapters
// Package decode provides frame decoders for various audio file formats.
//
// Supports: raw PCM, WAV, MP3, FLAC and Ogg/Vorbis.
//
// All decoders implement the Decoder interface and hand out whole frames of
// PCM in the decoder's native format; the mixer's conversion layer takes it
// from there. Decoders report their native sample width rather than forcing
// everything through 16-bit.
//
// Example:
//
//	dec, err := decode.NewWAV(file)
//	src := mixer.NewDecoderSource(dec)
package decode
