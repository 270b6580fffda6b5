// ABOUTME: Audio source abstraction and the raw PCM implementation
// ABOUTME: Uniform frame producer interface consumed by channels
package mixer

import (
	"fmt"
	"io"
	"sync"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// Source produces PCM frames in its own native format. A source carries
// playback attributes (priority, volume, rate) that combine with the
// channel's when played. Sources that cannot seek must not be bound to more
// than one channel at a time; sources that cannot rewind must not loop.
type Source interface {
	// Format returns the source's native format. Constant over the
	// source's lifetime.
	Format() audio.Format

	// Length returns the total frame count, or LengthUnknown.
	Length() int64

	// Priority orders sources for eviction; larger values survive longer.
	Priority() int
	SetPriority(p int)

	// Volume is the per-source volume in [0, MaxVolume].
	Volume() int
	SetVolume(v int) error

	// Rate is the per-source playback rate multiplier (>= 0).
	Rate() float64
	SetRate(r float64) error

	CanRewind() bool
	CanSeek() bool

	// Position returns the next frame to be read.
	Position() int64

	// SetPosition seeks to the given frame. Positions beyond the end are
	// clamped; sources with stricter contracts may reject them.
	SetPosition(frame int64) error

	// Rewind resets the source to frame zero.
	Rewind() error

	// ReadBytes fills p with whole frames of raw PCM in the native format
	// and returns the byte count. io.EOF signals end of stream.
	ReadBytes(p []byte) (int, error)

	// ReadFrames produces up to frames frames as 32-bit samples. When
	// volume is negative the samples are written plain (for later filter
	// processing); otherwise they are accumulated into dst scaled by
	// volume/MaxVolume. Returns the number of frames produced; zero means
	// end of stream.
	ReadFrames(dst []int32, frames int, volume int) (int, error)

	// ReadAll returns the remaining data. Only defined for sources of
	// known length.
	ReadAll() ([]byte, error)
}

// LengthUnknown is the Length result for unbounded or undetermined streams.
const LengthUnknown = -1

// sourceProps carries the playback attributes every source shares.
type sourceProps struct {
	mu       sync.Mutex
	priority int
	volume   int
	rate     float64
}

func newSourceProps() sourceProps {
	return sourceProps{volume: audio.MaxVolume, rate: 1.0}
}

func (p *sourceProps) Priority() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.priority
}

func (p *sourceProps) SetPriority(v int) {
	p.mu.Lock()
	p.priority = v
	p.mu.Unlock()
}

func (p *sourceProps) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *sourceProps) SetVolume(v int) error {
	if v < 0 || v > audio.MaxVolume {
		return fmt.Errorf("%w: volume %d", ErrOutOfRange, v)
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	return nil
}

func (p *sourceProps) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

func (p *sourceProps) SetRate(r float64) error {
	if r < 0 {
		return fmt.Errorf("%w: rate %v", ErrOutOfRange, r)
	}
	p.mu.Lock()
	p.rate = r
	p.mu.Unlock()
	return nil
}

// framesFromBytes widens n bytes of raw fmt samples into dst. A negative
// volume writes plain samples; otherwise the samples are convert-mixed at
// the given volume. Returns the number of whole frames handled.
func framesFromBytes(dst []int32, raw []byte, n int, f audio.Format, volume int) int {
	samples := n / f.SampleSize()
	if volume < 0 {
		for i := 0; i < samples; i++ {
			dst[i] = 0
		}
		volume = audio.MaxVolume
	}
	audio.ConvertMix(dst, raw, samples, f.Enc, volume)
	return samples / f.Channels
}

// RawSource streams raw PCM with a declared format from a byte stream,
// optionally restricted to a [start, start+length) frame window. Seeking
// and rewinding work when the underlying reader is an io.Seeker.
type RawSource struct {
	sourceProps

	r      io.Reader
	seeker io.Seeker
	format audio.Format
	start  int64 // byte offset of frame zero
	length int64 // frames, LengthUnknown for plain readers
	pos    int64 // next frame to read

	scratch []byte
}

// NewRawSource creates a raw source over r. When r implements io.Seeker
// the current offset becomes frame zero and the remaining data determines
// the length.
func NewRawSource(r io.Reader, format audio.Format) (*RawSource, error) {
	if format.FrameSize() <= 0 {
		return nil, fmt.Errorf("%w: format %s", ErrInvalidArgument, format)
	}
	s := &RawSource{
		sourceProps: newSourceProps(),
		r:           r,
		format:      format,
		length:      LengthUnknown,
	}
	if sk, ok := r.(io.Seeker); ok {
		start, err := sk.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("raw source: %w", err)
		}
		end, err := sk.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("raw source: %w", err)
		}
		if _, err := sk.Seek(start, io.SeekStart); err != nil {
			return nil, fmt.Errorf("raw source: %w", err)
		}
		s.seeker = sk
		s.start = start
		s.length = (end - start) / int64(format.FrameSize())
	}
	return s, nil
}

// NewRawSourceWindow creates a raw source restricted to lengthFrames frames
// beginning at startFrame of rs.
func NewRawSourceWindow(rs io.ReadSeeker, format audio.Format, startFrame, lengthFrames int64) (*RawSource, error) {
	s, err := NewRawSource(rs, format)
	if err != nil {
		return nil, err
	}
	if startFrame < 0 || lengthFrames < 0 || startFrame+lengthFrames > s.length {
		return nil, fmt.Errorf("%w: window [%d, %d)", ErrOutOfRange, startFrame, startFrame+lengthFrames)
	}
	s.start += startFrame * int64(format.FrameSize())
	s.length = lengthFrames
	if err := s.Rewind(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RawSource) Format() audio.Format { return s.format }

func (s *RawSource) Length() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

func (s *RawSource) CanRewind() bool { return s.seeker != nil }
func (s *RawSource) CanSeek() bool   { return s.seeker != nil }

func (s *RawSource) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition seeks to the given frame, clamped to the stream length.
func (s *RawSource) SetPosition(frame int64) error {
	if s.seeker == nil {
		return fmt.Errorf("%w: source is not seekable", ErrUnsupported)
	}
	if frame < 0 {
		return fmt.Errorf("%w: position %d", ErrOutOfRange, frame)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.length >= 0 && frame > s.length {
		frame = s.length
	}
	if _, err := s.seeker.Seek(s.start+frame*int64(s.format.FrameSize()), io.SeekStart); err != nil {
		return fmt.Errorf("raw source: %w", err)
	}
	s.pos = frame
	return nil
}

func (s *RawSource) Rewind() error { return s.SetPosition(0) }

// ReadBytes fills p with whole frames from the current position.
func (s *RawSource) ReadBytes(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBytesLocked(p)
}

func (s *RawSource) readBytesLocked(p []byte) (int, error) {
	frameSize := s.format.FrameSize()
	whole := len(p) / frameSize * frameSize
	if s.length >= 0 {
		remain := (s.length - s.pos) * int64(frameSize)
		if int64(whole) > remain {
			whole = int(remain)
		}
	}
	if whole == 0 {
		return 0, io.EOF
	}

	n, err := io.ReadFull(s.r, p[:whole])
	n = n / frameSize * frameSize
	s.pos += int64(n / frameSize)
	if err == io.ErrUnexpectedEOF {
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	return n, err
}

// ReadFrames produces up to frames frames as accumulator samples.
func (s *RawSource) ReadFrames(dst []int32, frames, volume int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	need := frames * s.format.FrameSize()
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	n, err := s.readBytesLocked(s.scratch[:need])
	if n == 0 {
		return 0, err
	}
	return framesFromBytes(dst, s.scratch, n, s.format, volume), nil
}

// ReadAll returns the remaining frames. Only available for sources of
// known length.
func (s *RawSource) ReadAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.length < 0 {
		return nil, fmt.Errorf("%w: length unknown", ErrUnsupported)
	}
	remain := (s.length - s.pos) * int64(s.format.FrameSize())
	buf := make([]byte, remain)
	n, err := io.ReadFull(s.r, buf)
	s.pos += int64(n / s.format.FrameSize())
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return buf[:n], fmt.Errorf("raw source: %w", err)
	}
	return buf[:n], nil
}
