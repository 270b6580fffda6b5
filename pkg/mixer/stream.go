// ABOUTME: Decoder-backed audio source
// ABOUTME: Adapts a frame decoder (MP3, FLAC, Vorbis, WAV) to the Source interface
package mixer

import (
	"fmt"
	"io"

	"github.com/mixforge/mixforge-go/pkg/audio"
	"github.com/mixforge/mixforge-go/pkg/audio/decode"
)

// DecoderSource plays frames produced by a decoder. The engine never parses
// file headers itself; the decoder reports its native format after open and
// this source forwards it untouched.
type DecoderSource struct {
	sourceProps

	dec     decode.Decoder
	format  audio.Format
	pos     int64
	scratch []byte
}

// NewDecoderSource wraps dec as a Source.
func NewDecoderSource(dec decode.Decoder) *DecoderSource {
	return &DecoderSource{
		sourceProps: newSourceProps(),
		dec:         dec,
		format:      dec.Format(),
	}
}

func (s *DecoderSource) Format() audio.Format { return s.format }

func (s *DecoderSource) Length() int64 {
	if n := s.dec.Length(); n >= 0 {
		return n
	}
	return LengthUnknown
}

func (s *DecoderSource) CanRewind() bool { return s.dec.Seekable() }
func (s *DecoderSource) CanSeek() bool   { return s.dec.Seekable() }

func (s *DecoderSource) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition seeks the decoder to the given frame, clamped to the stream
// length when known.
func (s *DecoderSource) SetPosition(frame int64) error {
	if frame < 0 {
		return fmt.Errorf("%w: position %d", ErrOutOfRange, frame)
	}
	if !s.dec.Seekable() {
		return fmt.Errorf("%w: source is not seekable", ErrUnsupported)
	}
	if n := s.dec.Length(); n >= 0 && frame > n {
		frame = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dec.Seek(frame); err != nil {
		return fmt.Errorf("decoder source: %w", err)
	}
	s.pos = frame
	return nil
}

func (s *DecoderSource) Rewind() error { return s.SetPosition(0) }

// ReadBytes fills p with whole frames of decoded PCM.
func (s *DecoderSource) ReadBytes(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBytesLocked(p)
}

func (s *DecoderSource) readBytesLocked(p []byte) (int, error) {
	n, err := s.dec.Read(p)
	s.pos += int64(n / s.format.FrameSize())
	return n, err
}

// ReadFrames produces up to frames frames as accumulator samples.
func (s *DecoderSource) ReadFrames(dst []int32, frames, volume int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	need := frames * s.format.FrameSize()
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	n, err := s.readBytesLocked(s.scratch[:need])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	return framesFromBytes(dst, s.scratch, n, s.format, volume), nil
}

// ReadAll decodes the remaining frames. Only available when the decoder
// reports a length.
func (s *DecoderSource) ReadAll() ([]byte, error) {
	length := s.Length()
	if length < 0 {
		return nil, fmt.Errorf("%w: length unknown", ErrUnsupported)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remain := (length - s.pos) * int64(s.format.FrameSize())
	buf := make([]byte, remain)
	total := 0
	for int64(total) < remain {
		n, err := s.dec.Read(buf[total:])
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return buf[:total], fmt.Errorf("decoder source: %w", err)
		}
		if n == 0 {
			break
		}
	}
	s.pos += int64(total / s.format.FrameSize())
	return buf[:total], nil
}
