// ABOUTME: MP3 frame decoder
// ABOUTME: Wraps go-mp3 which outputs 16-bit little-endian stereo
package decode

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// mp3FrameSize is fixed: go-mp3 always emits 16-bit stereo.
const mp3FrameSize = 4

// MP3 decodes an MP3 stream.
type MP3 struct {
	dec      *mp3.Decoder
	seekable bool
	length   int64
}

// NewMP3 creates an MP3 decoder over r. Seeking works when r implements
// io.Seeker.
func NewMP3(r io.Reader) (*MP3, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	_, seekable := r.(io.Seeker)

	length := int64(LengthUnknown)
	if seekable {
		if n := dec.Length(); n > 0 {
			length = n / mp3FrameSize
		}
	}

	return &MP3{dec: dec, seekable: seekable, length: length}, nil
}

func (d *MP3) Format() audio.Format {
	return audio.Format{Freq: d.dec.SampleRate(), Enc: audio.S16LSB, Channels: 2}
}

func (d *MP3) Length() int64  { return d.length }
func (d *MP3) Seekable() bool { return d.seekable }

// Seek repositions the stream to the given frame offset.
func (d *MP3) Seek(frame int64) error {
	if !d.seekable {
		return ErrUnseekable
	}
	if _, err := d.dec.Seek(frame*mp3FrameSize, io.SeekStart); err != nil {
		return fmt.Errorf("mp3: %w", err)
	}
	return nil
}

// Read fills p with whole frames of decoded PCM.
func (d *MP3) Read(p []byte) (int, error) {
	whole := len(p) / mp3FrameSize * mp3FrameSize
	if whole == 0 {
		return 0, nil
	}

	n, err := io.ReadFull(d.dec, p[:whole])
	n = n / mp3FrameSize * mp3FrameSize
	if err == io.ErrUnexpectedEOF {
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	return n, err
}
