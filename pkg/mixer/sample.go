// ABOUTME: In-memory sample source
// ABOUTME: Fully seekable PCM held in a byte slice, optionally pre-converted
package mixer

import (
	"fmt"
	"io"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// SampleSource plays PCM held entirely in memory. It always supports
// seeking and rewinding, which makes it the natural carrier for short
// effects that loop or restart often.
type SampleSource struct {
	sourceProps

	data   []byte
	format audio.Format
	pos    int64 // frames
}

// NewSampleSource creates a sample source over data in the given format.
// The data is not copied.
func NewSampleSource(data []byte, format audio.Format) (*SampleSource, error) {
	if format.FrameSize() <= 0 {
		return nil, fmt.Errorf("%w: format %s", ErrInvalidArgument, format)
	}
	return &SampleSource{
		sourceProps: newSourceProps(),
		data:        data[:len(data)/format.FrameSize()*format.FrameSize()],
		format:      format,
	}, nil
}

// NewConvertedSampleSource converts data from its native format into target
// once, at construction, so playback skips conversion entirely when the
// target matches the mixer format.
func NewConvertedSampleSource(data []byte, native, target audio.Format) (*SampleSource, error) {
	cvt, err := audio.NewConverter(native, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	buf, n := cvt.Convert(buf, len(data))
	return NewSampleSource(buf[:n], target)
}

func (s *SampleSource) Format() audio.Format { return s.format }

func (s *SampleSource) Length() int64 {
	return int64(len(s.data) / s.format.FrameSize())
}

func (s *SampleSource) CanRewind() bool { return true }
func (s *SampleSource) CanSeek() bool   { return true }

func (s *SampleSource) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition seeks to the given frame. Unlike streamed sources, positions
// outside the sample's range are rejected.
func (s *SampleSource) SetPosition(frame int64) error {
	if frame < 0 || frame > s.Length() {
		return fmt.Errorf("%w: position %d of %d", ErrOutOfRange, frame, s.Length())
	}
	s.mu.Lock()
	s.pos = frame
	s.mu.Unlock()
	return nil
}

func (s *SampleSource) Rewind() error { return s.SetPosition(0) }

// ReadBytes fills p with whole frames from the current position.
func (s *SampleSource) ReadBytes(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBytesLocked(p)
}

func (s *SampleSource) readBytesLocked(p []byte) (int, error) {
	frameSize := s.format.FrameSize()
	off := s.pos * int64(frameSize)
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p[:len(p)/frameSize*frameSize], s.data[off:])
	n = n / frameSize * frameSize
	s.pos += int64(n / frameSize)
	return n, nil
}

// ReadFrames produces up to frames frames as accumulator samples.
func (s *SampleSource) ReadFrames(dst []int32, frames, volume int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameSize := s.format.FrameSize()
	off := s.pos * int64(frameSize)
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	avail := s.data[off:]
	n := frames * frameSize
	if n > len(avail) {
		n = len(avail) / frameSize * frameSize
	}
	produced := framesFromBytes(dst, avail, n, s.format, volume)
	s.pos += int64(produced)
	return produced, nil
}

// ReadAll returns the remaining frames.
func (s *SampleSource) ReadAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	off := s.pos * int64(s.format.FrameSize())
	out := make([]byte, int64(len(s.data))-off)
	copy(out, s.data[off:])
	s.pos = s.Length()
	return out, nil
}
