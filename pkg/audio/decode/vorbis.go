// ABOUTME: Ogg/Vorbis frame decoder
// ABOUTME: Wraps jfreymuth/oggvorbis, converting float samples to 16-bit PCM
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// Vorbis decodes an Ogg/Vorbis stream. Samples are converted from the
// decoder's float output to 16-bit signed PCM.
type Vorbis struct {
	dec      *oggvorbis.Reader
	seekable bool
	work     []float32
}

// NewVorbis creates an Ogg/Vorbis decoder over r. Seeking works when r
// implements io.Seeker.
func NewVorbis(r io.Reader) (*Vorbis, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	_, seekable := r.(io.Seeker)
	return &Vorbis{dec: dec, seekable: seekable}, nil
}

func (d *Vorbis) Format() audio.Format {
	return audio.Format{Freq: d.dec.SampleRate(), Enc: audio.S16LSB, Channels: d.dec.Channels()}
}

func (d *Vorbis) Length() int64 {
	if n := d.dec.Length(); n > 0 {
		return n
	}
	return LengthUnknown
}

func (d *Vorbis) Seekable() bool { return d.seekable }

// Seek repositions the stream to the given frame offset.
func (d *Vorbis) Seek(frame int64) error {
	if !d.seekable {
		return ErrUnseekable
	}
	if err := d.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis: %w", err)
	}
	return nil
}

// Read fills p with whole frames of decoded PCM.
func (d *Vorbis) Read(p []byte) (int, error) {
	channels := d.dec.Channels()
	frameSize := 2 * channels
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}

	want := frames * channels
	if cap(d.work) < want {
		d.work = make([]float32, want)
	}
	d.work = d.work[:want]

	n, err := d.dec.Read(d.work)
	n = n / channels * channels
	for i := 0; i < n; i++ {
		v := d.work[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s := int16(v * 32767)
		p[i*2] = byte(s)
		p[i*2+1] = byte(s >> 8)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n * 2, err
}
