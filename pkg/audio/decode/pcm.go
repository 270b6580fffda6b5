// ABOUTME: Raw PCM decoder
// ABOUTME: Wraps a byte stream with a declared format, starting at its current offset
package decode

import (
	"fmt"
	"io"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// PCM reads raw PCM with a caller-declared format. When the underlying
// reader supports seeking, the stream length is known and Seek works.
type PCM struct {
	r      io.Reader
	seeker io.Seeker
	format audio.Format
	start  int64
	length int64
}

// NewPCM creates a raw PCM decoder over r. If r implements io.Seeker the
// current offset becomes frame zero and the remaining bytes determine the
// length.
func NewPCM(r io.Reader, format audio.Format) (*PCM, error) {
	if format.FrameSize() <= 0 {
		return nil, fmt.Errorf("pcm: invalid format %s", format)
	}

	p := &PCM{r: r, format: format, length: LengthUnknown}

	if s, ok := r.(io.Seeker); ok {
		start, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("pcm: %w", err)
		}
		end, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("pcm: %w", err)
		}
		if _, err := s.Seek(start, io.SeekStart); err != nil {
			return nil, fmt.Errorf("pcm: %w", err)
		}
		p.seeker = s
		p.start = start
		p.length = (end - start) / int64(format.FrameSize())
	}

	return p, nil
}

func (p *PCM) Format() audio.Format { return p.format }
func (p *PCM) Length() int64        { return p.length }
func (p *PCM) Seekable() bool       { return p.seeker != nil }

// Seek repositions the stream to the given frame offset.
func (p *PCM) Seek(frame int64) error {
	if p.seeker == nil {
		return ErrUnseekable
	}
	off := p.start + frame*int64(p.format.FrameSize())
	if _, err := p.seeker.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("pcm: %w", err)
	}
	return nil
}

// Read fills p with whole frames of raw PCM.
func (p *PCM) Read(buf []byte) (int, error) {
	frameSize := p.format.FrameSize()
	whole := len(buf) / frameSize * frameSize
	if whole == 0 {
		return 0, nil
	}

	n, err := io.ReadFull(p.r, buf[:whole])
	n = n / frameSize * frameSize
	if err == io.ErrUnexpectedEOF || (err == io.EOF && n > 0) {
		err = nil
		if n == 0 {
			err = io.EOF
		}
	}
	return n, err
}
