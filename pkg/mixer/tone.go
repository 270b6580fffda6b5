// ABOUTME: Procedural tone generator source
// ABOUTME: Endless sine or square wave for level checks and tests
package mixer

import (
	"math"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// ToneWave selects the generated waveform.
type ToneWave int

const (
	ToneSine ToneWave = iota
	ToneSquare
)

// ToneSource generates an endless fixed-frequency tone in 16-bit PCM. It is
// rewindable and seekable (generation is a pure function of the frame
// index), which makes it convenient for exercising playback paths without
// any media files.
type ToneSource struct {
	sourceProps

	format    audio.Format
	frequency float64
	amplitude int32
	wave      ToneWave
	pos       int64
}

// NewToneSource creates a tone generator. amplitude is the peak sample
// value (at most 32767).
func NewToneSource(freq int, channels int, toneHz float64, amplitude int32, wave ToneWave) *ToneSource {
	if amplitude > math.MaxInt16 {
		amplitude = math.MaxInt16
	}
	return &ToneSource{
		sourceProps: newSourceProps(),
		format:      audio.Format{Freq: freq, Enc: audio.S16, Channels: channels},
		frequency:   toneHz,
		amplitude:   amplitude,
		wave:        wave,
	}
}

func (s *ToneSource) Format() audio.Format { return s.format }
func (s *ToneSource) Length() int64        { return LengthUnknown }
func (s *ToneSource) CanRewind() bool      { return true }
func (s *ToneSource) CanSeek() bool        { return true }

func (s *ToneSource) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *ToneSource) SetPosition(frame int64) error {
	if frame < 0 {
		return ErrOutOfRange
	}
	s.mu.Lock()
	s.pos = frame
	s.mu.Unlock()
	return nil
}

func (s *ToneSource) Rewind() error { return s.SetPosition(0) }

// sampleAt evaluates the waveform at the given frame index.
func (s *ToneSource) sampleAt(frame int64) int32 {
	phase := math.Mod(float64(frame)*s.frequency/float64(s.format.Freq), 1.0)
	switch s.wave {
	case ToneSquare:
		if phase < 0.5 {
			return s.amplitude
		}
		return -s.amplitude
	default:
		return int32(math.Sin(2*math.Pi*phase) * float64(s.amplitude))
	}
}

// ReadBytes fills p with whole frames of the tone.
func (s *ToneSource) ReadBytes(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameSize := s.format.FrameSize()
	frames := len(p) / frameSize
	for f := 0; f < frames; f++ {
		v := int16(s.sampleAt(s.pos + int64(f)))
		for ch := 0; ch < s.format.Channels; ch++ {
			i := (f*s.format.Channels + ch) * 2
			p[i] = byte(v)
			p[i+1] = byte(v >> 8)
		}
	}
	s.pos += int64(frames)
	return frames * frameSize, nil
}

// ReadFrames produces frames frames as accumulator samples.
func (s *ToneSource) ReadFrames(dst []int32, frames, volume int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for f := 0; f < frames; f++ {
		v := int64(s.sampleAt(s.pos + int64(f)))
		for ch := 0; ch < s.format.Channels; ch++ {
			i := f*s.format.Channels + ch
			if volume < 0 {
				dst[i] = int32(v)
			} else {
				dst[i] += int32(v * int64(volume) >> 8)
			}
		}
	}
	s.pos += int64(frames)
	return frames, nil
}

// ReadAll is undefined for an endless generator.
func (s *ToneSource) ReadAll() ([]byte, error) {
	return nil, ErrUnsupported
}
