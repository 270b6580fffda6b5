// ABOUTME: WAV frame decoder
// ABOUTME: Wraps go-audio/wav, exposing the file's native sample width
package decode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// WAV decodes a RIFF/WAVE stream using go-audio.
type WAV struct {
	dec    *wav.Decoder
	format audio.Format
	shift  int // right shift applied to wider-than-16-bit sources
	length int64
	pos    int64
	intBuf *goaudio.IntBuffer
}

// NewWAV creates a WAV decoder over rs.
func NewWAV(rs io.ReadSeeker) (*WAV, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: not a valid RIFF/WAVE stream")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	enc := audio.S16LSB
	shift := 0
	switch {
	case dec.BitDepth == 8:
		enc = audio.U8
	case dec.BitDepth > 16:
		// The engine's sample encodings stop at 16 bits wide.
		shift = int(dec.BitDepth) - 16
	}

	format := audio.Format{
		Freq:     int(dec.SampleRate),
		Enc:      enc,
		Channels: int(dec.NumChans),
	}

	nativeFrame := int64(dec.BitDepth/8) * int64(dec.NumChans)
	length := int64(LengthUnknown)
	if nativeFrame > 0 {
		length = dec.PCMLen() / nativeFrame
	}

	return &WAV{dec: dec, format: format, shift: shift, length: length}, nil
}

func (d *WAV) Format() audio.Format { return d.format }
func (d *WAV) Length() int64        { return d.length }
func (d *WAV) Seekable() bool       { return true }

// Seek repositions the stream to the given frame offset. go-audio decodes
// forward only, so seeking rewinds and skips.
func (d *WAV) Seek(frame int64) error {
	if frame < d.pos {
		if err := d.dec.Rewind(); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
		if err := d.dec.FwdToPCM(); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
		d.pos = 0
	}

	scratch := make([]byte, 4096)
	frameSize := d.format.FrameSize()
	for d.pos < frame {
		want := int(frame-d.pos) * frameSize
		if want > len(scratch) {
			want = len(scratch) / frameSize * frameSize
		}
		n, err := d.Read(scratch[:want])
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return nil
}

// Read fills p with whole frames of decoded PCM.
func (d *WAV) Read(p []byte) (int, error) {
	frameSize := d.format.FrameSize()
	sampleSize := d.format.SampleSize()
	samples := len(p) / frameSize * d.format.Channels
	if samples == 0 {
		return 0, nil
	}

	if d.intBuf == nil || cap(d.intBuf.Data) < samples {
		d.intBuf = &goaudio.IntBuffer{Data: make([]int, samples)}
	}
	d.intBuf.Data = d.intBuf.Data[:samples]

	n, err := d.dec.PCMBuffer(d.intBuf)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	n = n / d.format.Channels * d.format.Channels
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		s := d.intBuf.Data[i] >> d.shift
		if sampleSize == 1 {
			p[i] = byte(s)
		} else {
			p[i*2] = byte(s)
			p[i*2+1] = byte(s >> 8)
		}
	}

	d.pos += int64(n / d.format.Channels)
	return n * sampleSize, nil
}
