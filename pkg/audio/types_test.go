// ABOUTME: Tests for audio format types
// ABOUTME: Tests encoding properties and frame arithmetic
package audio

import "testing"

func TestEncodingProperties(t *testing.T) {
	tests := []struct {
		enc    Encoding
		bits   int
		signed bool
		big    bool
	}{
		{U8, 8, false, false},
		{S8, 8, true, false},
		{U16LSB, 16, false, false},
		{S16LSB, 16, true, false},
		{U16MSB, 16, false, true},
		{S16MSB, 16, true, true},
		{S32, 32, true, false},
	}

	for _, tt := range tests {
		if got := tt.enc.Bits(); got != tt.bits {
			t.Errorf("%s: expected %d bits, got %d", tt.enc, tt.bits, got)
		}
		if got := tt.enc.Signed(); got != tt.signed {
			t.Errorf("%s: expected signed=%v, got %v", tt.enc, tt.signed, got)
		}
		if got := tt.enc.BigEndian(); got != tt.big {
			t.Errorf("%s: expected bigEndian=%v, got %v", tt.enc, tt.big, got)
		}
	}
}

func TestFormatArithmetic(t *testing.T) {
	f := Format{Freq: 22050, Enc: S16LSB, Channels: 2}

	if got := f.SampleSize(); got != 2 {
		t.Errorf("expected sample size 2, got %d", got)
	}
	if got := f.FrameSize(); got != 4 {
		t.Errorf("expected frame size 4, got %d", got)
	}
	if got := f.ByteRate(); got != 88200 {
		t.Errorf("expected byte rate 88200, got %d", got)
	}
	if f.IsMixer() {
		t.Error("S16LSB format should not be the mixer representation")
	}

	m := Format{Freq: 22050, Enc: S32, Channels: 2}
	if !m.IsMixer() {
		t.Error("S32 format should be the mixer representation")
	}
}
