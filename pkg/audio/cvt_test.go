// ABOUTME: Tests for the format converter
// ABOUTME: Tests length ratios, rate snap and conversion pipelines
package audio

import "testing"

func TestNewConverterIdentity(t *testing.T) {
	f := Format{Freq: 44100, Enc: S16, Channels: 2}
	c, err := NewConverter(f, f)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}
	if c.Mul != 1 || c.Div != 1 {
		t.Errorf("expected 1/1 ratio for identity, got %d/%d", c.Mul, c.Div)
	}

	buf := []byte{1, 2, 3, 4}
	out, n := c.Convert(buf, 4)
	if n != 4 {
		t.Errorf("expected 4 bytes out, got %d", n)
	}
	for i := range buf {
		if out[i] != buf[i] {
			t.Errorf("byte %d: expected %d, got %d", i, buf[i], out[i])
		}
	}
}

func TestNewConverterRejectsTwoMixerFormats(t *testing.T) {
	a := Format{Freq: 44100, Enc: S32, Channels: 2}
	b := Format{Freq: 48000, Enc: S32, Channels: 2}
	if _, err := NewConverter(a, b); err == nil {
		t.Error("expected error converting between two distinct mixer formats")
	}
}

func TestConverterLengthRatio(t *testing.T) {
	// 22050 mono u8 -> 44100 stereo s16: bytes multiply by 8.
	src := Format{Freq: 22050, Enc: U8, Channels: 1}
	dst := Format{Freq: 44100, Enc: S16, Channels: 2}

	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	if c.Mul != 8*c.Div {
		t.Errorf("expected 8/1 byte ratio, got %d/%d", c.Mul, c.Div)
	}
}

func TestConverterSourceBytesWholeFrames(t *testing.T) {
	src := Format{Freq: 44100, Enc: S16, Channels: 2}
	dst := Format{Freq: 22050, Enc: S16, Channels: 2}
	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	n := c.SourceBytes(100)
	if n%src.FrameSize() != 0 {
		t.Errorf("SourceBytes %d is not a whole number of source frames", n)
	}
	if n < 200 {
		t.Errorf("expected at least 200 source bytes for 100 output bytes, got %d", n)
	}
}

func TestConverterMonoToStereo(t *testing.T) {
	src := Format{Freq: 8000, Enc: S16LSB, Channels: 1}
	dst := Format{Freq: 8000, Enc: S16LSB, Channels: 2}
	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	buf := make([]byte, 4)
	writeSample(buf, 0, S16LSB, 100)
	writeSample(buf, 1, S16LSB, -200)

	out, n := c.Convert(buf, 4)
	if n != 8 {
		t.Fatalf("expected 8 output bytes, got %d", n)
	}

	expected := []int32{100, 100, -200, -200}
	for i, want := range expected {
		if got := readSample(out, i, S16LSB); got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestConverterStereoToMono(t *testing.T) {
	src := Format{Freq: 8000, Enc: S16LSB, Channels: 2}
	dst := Format{Freq: 8000, Enc: S16LSB, Channels: 1}
	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	buf := make([]byte, 8)
	writeSample(buf, 0, S16LSB, 100)
	writeSample(buf, 1, S16LSB, 300)
	writeSample(buf, 2, S16LSB, -100)
	writeSample(buf, 3, S16LSB, -300)

	out, n := c.Convert(buf, 8)
	if n != 4 {
		t.Fatalf("expected 4 output bytes, got %d", n)
	}
	if got := readSample(out, 0, S16LSB); got != 200 {
		t.Errorf("expected averaged 200, got %d", got)
	}
	if got := readSample(out, 1, S16LSB); got != -200 {
		t.Errorf("expected averaged -200, got %d", got)
	}
}

func TestConverterDepthScaling(t *testing.T) {
	src := Format{Freq: 8000, Enc: U8, Channels: 1}
	dst := Format{Freq: 8000, Enc: S16LSB, Channels: 1}
	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	out, n := c.Convert([]byte{0xFF}, 1)
	if n != 2 {
		t.Fatalf("expected 2 output bytes, got %d", n)
	}
	// u8 max (127 above midpoint) scales to 127<<8.
	if got := readSample(out, 0, S16LSB); got != 127<<8 {
		t.Errorf("expected %d, got %d", 127<<8, got)
	}
}

func TestConverterRateHalving(t *testing.T) {
	src := Format{Freq: 44100, Enc: S16LSB, Channels: 1}
	dst := Format{Freq: 22050, Enc: S16LSB, Channels: 1}
	c, err := NewConverter(src, dst)
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}

	const frames = 100
	buf := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		writeSample(buf, i, S16LSB, int32(i*10))
	}

	_, n := c.Convert(buf, len(buf))
	if n != frames {
		t.Errorf("expected %d output bytes after halving, got %d", frames, n)
	}
}

func TestSnapFrequency(t *testing.T) {
	tests := []struct {
		freq     int
		rate     float64
		expected int
	}{
		{44100, 1.0, 44100},
		{44100, 1.001, 44150},
		{44100, 0.5, 22050},
		{22050, 1.0, 22050},
		{100, 0.1, 0},
	}

	for _, tt := range tests {
		if got := SnapFrequency(tt.freq, tt.rate); got != tt.expected {
			t.Errorf("SnapFrequency(%d, %v): expected %d, got %d",
				tt.freq, tt.rate, tt.expected, got)
		}
	}
}
