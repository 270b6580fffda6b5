// ABOUTME: Audio format definitions for the mixing engine
// ABOUTME: Defines sample encodings, formats and frame arithmetic
package audio

import (
	"encoding/binary"
	"fmt"
)

// MaxVolume is unity gain. All volume parameters in this module are in the
// range [0, MaxVolume].
const MaxVolume = 256

// Encoding describes how one sample is stored: bit depth in the low byte,
// bit 12 set for big-endian storage, bit 15 set for signed samples.
type Encoding uint16

const (
	encBigEndian Encoding = 0x1000
	encSigned    Encoding = 0x8000
)

// Sample encodings understood by the conversion primitives.
const (
	U8     Encoding = 0x0008
	S8     Encoding = 0x8008
	U16LSB Encoding = 0x0010
	S16LSB Encoding = 0x8010
	U16MSB Encoding = 0x1010
	S16MSB Encoding = 0x9010

	// S32 is the engine's 32-bit signed summing representation. Buffers in
	// this encoding hold native-order int32 accumulator samples.
	S32 Encoding = 0x8020
)

// Native-order aliases.
var (
	U16 = nativeOrder(U16LSB, U16MSB)
	S16 = nativeOrder(S16LSB, S16MSB)
)

var hostBigEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 0
}()

func nativeOrder(lsb, msb Encoding) Encoding {
	if hostBigEndian {
		return msb
	}
	return lsb
}

// Bits returns the sample bit depth.
func (e Encoding) Bits() int { return int(e & 0xFF) }

// SampleSize returns the sample size in bytes.
func (e Encoding) SampleSize() int { return e.Bits() / 8 }

// Signed reports whether samples are stored as signed integers.
func (e Encoding) Signed() bool { return e&encSigned != 0 }

// BigEndian reports whether samples are stored big-endian.
func (e Encoding) BigEndian() bool { return e&encBigEndian != 0 }

func (e Encoding) String() string {
	switch e {
	case U8:
		return "u8"
	case S8:
		return "s8"
	case U16LSB:
		return "u16le"
	case S16LSB:
		return "s16le"
	case U16MSB:
		return "u16be"
	case S16MSB:
		return "s16be"
	case S32:
		return "s32"
	}
	return fmt.Sprintf("encoding(%#04x)", uint16(e))
}

// Format describes an audio stream: sample rate, sample encoding and
// interleaved channel count.
type Format struct {
	Freq     int
	Enc      Encoding
	Channels int
}

// SampleSize returns the size of one sample in bytes.
func (f Format) SampleSize() int { return f.Enc.SampleSize() }

// FrameSize returns the size of one frame (one sample per channel) in bytes.
func (f Format) FrameSize() int { return f.SampleSize() * f.Channels }

// ByteRate returns the stream data rate in bytes per second.
func (f Format) ByteRate() int { return f.FrameSize() * f.Freq }

// IsMixer reports whether the format is already in the engine's 32-bit
// summing representation.
func (f Format) IsMixer() bool { return f.Enc == S32 }

func (f Format) String() string {
	return fmt.Sprintf("%dHz %s %dch", f.Freq, f.Enc, f.Channels)
}
