// ABOUTME: Sample conversion and mixing primitives
// ABOUTME: Saturating accumulate, volume scale and format widening/narrowing
package audio

import (
	"encoding/binary"
	"math"
)

// Mix accumulates src into dst with saturation: for each sample,
// dst[i] += src[i] * volume / MaxVolume, clamped to the int32 range.
func Mix(dst, src []int32, volume int) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		v := int64(dst[i]) + (int64(src[i])*int64(volume))>>8
		dst[i] = clamp32(v)
	}
}

// Copy overwrites dst with src (no accumulation).
func Copy(dst, src []int32) {
	copy(dst, src)
}

// VolumeScale rescales buf in place by volume/MaxVolume.
func VolumeScale(buf []int32, volume int) {
	if volume == MaxVolume {
		return
	}
	for i, s := range buf {
		buf[i] = clamp32((int64(s) * int64(volume)) >> 8)
	}
}

// DivideAccumulator divides every sample by divisor. A divisor of zero or
// one leaves the buffer untouched.
func DivideAccumulator(buf []int32, divisor int32) {
	if divisor <= 1 {
		return
	}
	for i := range buf {
		buf[i] /= divisor
	}
}

// ConvertMix reads n samples of enc from src, widens them to signed 32-bit
// with the unsigned zero point shifted to signed zero, scales by
// volume/MaxVolume and accumulates into dst with saturation.
func ConvertMix(dst []int32, src []byte, n int, enc Encoding, volume int) error {
	if len(src) < n*enc.SampleSize() || len(dst) < n {
		return ErrShortBuffer
	}
	for i := 0; i < n; i++ {
		s := int64(readSample(src, i, enc))
		v := int64(dst[i]) + (s*int64(volume))>>8
		dst[i] = clamp32(v)
	}
	return nil
}

// ConvertAcc reads n 32-bit accumulator samples from src and writes them as
// enc samples into dst, saturating to the encoding's range and applying the
// signed/unsigned offset.
func ConvertAcc(dst []byte, src []int32, n int, enc Encoding) error {
	if len(src) < n || len(dst) < n*enc.SampleSize() {
		return ErrShortBuffer
	}
	for i := 0; i < n; i++ {
		writeSample(dst, i, enc, src[i])
	}
	return nil
}

func clamp32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func encByteOrder(enc Encoding) binary.ByteOrder {
	if enc.BigEndian() {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// readSample extracts sample i from raw in enc, as a signed 32-bit value
// with the unsigned zero point landing at signed zero.
func readSample(raw []byte, i int, enc Encoding) int32 {
	switch enc.SampleSize() {
	case 1:
		if enc.Signed() {
			return int32(int8(raw[i]))
		}
		return int32(raw[i]) - 128
	case 2:
		u := encByteOrder(enc).Uint16(raw[i*2:])
		if enc.Signed() {
			return int32(int16(u))
		}
		return int32(u) - 32768
	case 4:
		return int32(binary.NativeEndian.Uint32(raw[i*4:]))
	}
	return 0
}

// writeSample stores v as sample i of raw in enc, saturating to the
// encoding's range.
func writeSample(raw []byte, i int, enc Encoding, v int32) {
	switch enc.SampleSize() {
	case 1:
		if v > 127 {
			v = 127
		} else if v < -128 {
			v = -128
		}
		if enc.Signed() {
			raw[i] = byte(int8(v))
		} else {
			raw[i] = byte(v + 128)
		}
	case 2:
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		if enc.Signed() {
			encByteOrder(enc).PutUint16(raw[i*2:], uint16(int16(v)))
		} else {
			encByteOrder(enc).PutUint16(raw[i*2:], uint16(v+32768))
		}
	case 4:
		binary.NativeEndian.PutUint32(raw[i*4:], uint32(v))
	}
}
