// ABOUTME: Tests for the raw PCM decoder
// ABOUTME: Tests framing, length detection and seeking
package decode

import (
	"bytes"
	"io"
	"testing"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

func stereoS16(samples ...int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

func TestPCMLengthFromSeeker(t *testing.T) {
	format := audio.Format{Freq: 8000, Enc: audio.S16LSB, Channels: 2}
	data := stereoS16(1, 2, 3, 4, 5, 6, 7, 8) // 4 frames

	dec, err := NewPCM(bytes.NewReader(data), format)
	if err != nil {
		t.Fatalf("NewPCM failed: %v", err)
	}

	if got := dec.Length(); got != 4 {
		t.Errorf("expected length 4 frames, got %d", got)
	}
	if !dec.Seekable() {
		t.Error("expected reader-backed PCM to be seekable")
	}
}

func TestPCMLengthUnknownWithoutSeeker(t *testing.T) {
	format := audio.Format{Freq: 8000, Enc: audio.S16LSB, Channels: 1}
	r := io.MultiReader(bytes.NewReader(stereoS16(1, 2)))

	dec, err := NewPCM(r, format)
	if err != nil {
		t.Fatalf("NewPCM failed: %v", err)
	}
	if got := dec.Length(); got != LengthUnknown {
		t.Errorf("expected unknown length, got %d", got)
	}
	if dec.Seekable() {
		t.Error("expected plain reader to be unseekable")
	}
	if err := dec.Seek(0); err != ErrUnseekable {
		t.Errorf("expected ErrUnseekable, got %v", err)
	}
}

func TestPCMReadWholeFrames(t *testing.T) {
	format := audio.Format{Freq: 8000, Enc: audio.S16LSB, Channels: 2}
	data := stereoS16(100, -100, 200, -200)

	dec, err := NewPCM(bytes.NewReader(data), format)
	if err != nil {
		t.Fatalf("NewPCM failed: %v", err)
	}

	// A buffer that is not a multiple of the frame size is truncated.
	buf := make([]byte, 7)
	n, err := dec.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes (one frame), got %d", n)
	}
}

func TestPCMSeekAndEOF(t *testing.T) {
	format := audio.Format{Freq: 8000, Enc: audio.S16LSB, Channels: 1}
	data := stereoS16(10, 20, 30, 40)

	dec, err := NewPCM(bytes.NewReader(data), format)
	if err != nil {
		t.Fatalf("NewPCM failed: %v", err)
	}

	if err := dec.Seek(2); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	buf := make([]byte, 8)
	n, err := dec.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes after seeking to frame 2, got %d", n)
	}
	if got := int16(buf[0]) | int16(buf[1])<<8; got != 30 {
		t.Errorf("expected first sample 30, got %d", got)
	}

	if _, err := dec.Read(buf); err != io.EOF {
		t.Errorf("expected EOF at end of stream, got %v", err)
	}
}
