// ABOUTME: Tests for the device boundary
// ABOUTME: Spec helpers and accumulator narrowing in the pull reader
package output

import (
	"testing"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

func TestSpecHelpers(t *testing.T) {
	s := Spec{Freq: 22050, Enc: audio.S16LSB, Channels: 2, BufferMs: 100}

	if got := s.BufferFrames(); got != 2205 {
		t.Errorf("expected 2205 buffer frames, got %d", got)
	}
	f := s.Format()
	if f.Freq != 22050 || f.Channels != 2 || f.Enc != audio.S16LSB {
		t.Errorf("unexpected format %s", f)
	}
}

func TestPullReaderInvokesCallback(t *testing.T) {
	var gotFrames int
	r := &pullReader{spec: Spec{
		Freq:     8000,
		Enc:      audio.S16LSB,
		Channels: 2,
		Callback: func(acc []int32, frames int) {
			gotFrames = frames
			for i := range acc {
				acc[i] = 1000
			}
		},
	}}

	buf := make([]byte, 16) // 4 stereo frames of s16
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 16 {
		t.Errorf("expected 16 bytes, got %d", n)
	}
	if gotFrames != 4 {
		t.Errorf("expected callback for 4 frames, got %d", gotFrames)
	}
	if got := int16(buf[0]) | int16(buf[1])<<8; got != 1000 {
		t.Errorf("expected narrowed sample 1000, got %d", got)
	}
}

func TestPullReaderClipsOnce(t *testing.T) {
	r := &pullReader{spec: Spec{
		Freq:     8000,
		Enc:      audio.S16LSB,
		Channels: 1,
		Callback: func(acc []int32, frames int) {
			acc[0] = 1 << 20
			acc[1] = -(1 << 20)
		},
	}}

	buf := make([]byte, 4)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := int16(buf[0]) | int16(buf[1])<<8; got != 32767 {
		t.Errorf("expected clip to 32767, got %d", got)
	}
	if got := int16(buf[2]) | int16(buf[3])<<8; got != -32768 {
		t.Errorf("expected clip to -32768, got %d", got)
	}
}
