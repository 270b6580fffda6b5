// ABOUTME: Format conversion descriptor between two audio formats
// ABOUTME: Channel adjust, rate conversion and encoding rewrite in one pass
package audio

import (
	"fmt"

	"github.com/mixforge/mixforge-go/pkg/audio/resample"
)

// Converter rewrites raw sample data from a source format into a destination
// format. The length ratio is exposed as Mul/Div so callers can size reads:
// output_bytes = input_bytes * Mul / Div.
type Converter struct {
	Src Format
	Dst Format
	Mul int
	Div int

	identity bool
}

// NewConverter builds a conversion descriptor from src to dst. Converting
// between two distinct 32-bit summing formats is not supported.
func NewConverter(src, dst Format) (*Converter, error) {
	if src == dst {
		return &Converter{Src: src, Dst: dst, Mul: 1, Div: 1, identity: true}, nil
	}
	if src.IsMixer() && dst.IsMixer() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupported, src, dst)
	}
	if src.Freq <= 0 || dst.Freq <= 0 || src.Channels <= 0 || dst.Channels <= 0 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupported, src, dst)
	}

	mul := dst.ByteRate()
	div := src.ByteRate()
	g := gcd(mul, div)
	return &Converter{Src: src, Dst: dst, Mul: mul / g, Div: div / g}, nil
}

// SnapFrequency snaps freq scaled by rate to a 50 Hz grid so that small
// rate changes collapse to the same converter. A result of zero means the
// channel produces no samples.
func SnapFrequency(freq int, rate float64) int {
	return int(float64(freq)*rate/50+0.5) * 50
}

// SourceBytes returns how many source bytes are needed to produce dstBytes
// of output, rounded up to a whole source frame.
func (c *Converter) SourceBytes(dstBytes int) int {
	n := (dstBytes*c.Div + c.Mul - 1) / c.Mul
	frame := c.Src.FrameSize()
	if rem := n % frame; rem != 0 {
		n += frame - rem
	}
	return n
}

// Convert rewrites buf[0:n] from the source format into the destination
// format, growing the buffer if required. It returns the buffer (which may
// have been reallocated) and the output length in bytes.
//
// Order of operations: channel-count adjustment, rate conversion, sample
// encoding conversion.
func (c *Converter) Convert(buf []byte, n int) ([]byte, int) {
	if c.identity {
		return buf, n
	}

	// Widen to int32 work samples at the source's native scale.
	srcSamples := n / c.Src.SampleSize()
	work := make([]int32, srcSamples)
	for i := range work {
		work[i] = readSample(buf, i, c.Src.Enc)
	}

	work = adjustChannels(work, c.Src.Channels, c.Dst.Channels)

	if c.Src.Freq != c.Dst.Freq {
		frames := len(work) / c.Dst.Channels
		outFrames := resample.OutputFrames(frames, c.Src.Freq, c.Dst.Freq)
		out := make([]int32, outFrames*c.Dst.Channels)
		written := resample.Block(work, c.Dst.Channels, c.Src.Freq, c.Dst.Freq, out)
		work = out[:written*c.Dst.Channels]
	}

	// Match amplitude scale when the bit depths differ. The 32-bit summing
	// representation already carries samples at the device scale.
	if c.Src.Enc != S32 && c.Dst.Enc != S32 {
		if shift := c.Dst.Enc.Bits() - c.Src.Enc.Bits(); shift > 0 {
			for i := range work {
				work[i] <<= shift
			}
		} else if shift < 0 {
			for i := range work {
				work[i] >>= -shift
			}
		}
	} else if c.Src.Enc == S32 && c.Dst.Enc.Bits() == 8 {
		for i := range work {
			work[i] >>= 8
		}
	} else if c.Dst.Enc == S32 && c.Src.Enc.Bits() == 8 {
		for i := range work {
			work[i] <<= 8
		}
	}

	outLen := len(work) * c.Dst.SampleSize()
	if cap(buf) < outLen {
		buf = make([]byte, outLen)
	} else {
		buf = buf[:outLen]
	}
	for i, s := range work {
		writeSample(buf, i, c.Dst.Enc, s)
	}
	return buf, outLen
}

// adjustChannels converts interleaved samples between channel layouts.
// Upmixing repeats the last source channel; downmixing averages the extras
// into the last destination channel.
func adjustChannels(in []int32, srcCh, dstCh int) []int32 {
	if srcCh == dstCh {
		return in
	}
	frames := len(in) / srcCh
	out := make([]int32, frames*dstCh)
	if srcCh < dstCh {
		for f := 0; f < frames; f++ {
			for ch := 0; ch < dstCh; ch++ {
				src := ch
				if src >= srcCh {
					src = srcCh - 1
				}
				out[f*dstCh+ch] = in[f*srcCh+src]
			}
		}
		return out
	}
	for f := 0; f < frames; f++ {
		for ch := 0; ch < dstCh-1; ch++ {
			out[f*dstCh+ch] = in[f*srcCh+ch]
		}
		var sum int64
		for ch := dstCh - 1; ch < srcCh; ch++ {
			sum += int64(in[f*srcCh+ch])
		}
		out[f*dstCh+dstCh-1] = int32(sum / int64(srcCh-dstCh+1))
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
