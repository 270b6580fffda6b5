// ABOUTME: Tests for block resampling
// ABOUTME: Tests frame accounting and interpolation between sample rates
package resample

import "testing"

func TestOutputFrames(t *testing.T) {
	tests := []struct {
		in, src, dst, expected int
	}{
		{100, 44100, 44100, 100},
		{4415, 44150, 44100, 4410},
		{100, 44100, 88200, 200},
		{100, 88200, 44100, 50},
	}
	for _, tt := range tests {
		if got := OutputFrames(tt.in, tt.src, tt.dst); got != tt.expected {
			t.Errorf("OutputFrames(%d, %d, %d): expected %d, got %d",
				tt.in, tt.src, tt.dst, tt.expected, got)
		}
	}
}

func TestInputFramesRoundsUp(t *testing.T) {
	// 4410 output frames at 44100 from a 44150 source.
	if got := InputFrames(4410, 44150, 44100); got != 4415 {
		t.Errorf("expected 4415 input frames, got %d", got)
	}
	// Round trip: the input count always covers the requested output.
	for _, out := range []int{1, 7, 100, 4410} {
		in := InputFrames(out, 48000, 44100)
		if OutputFrames(in, 48000, 44100) < out {
			t.Errorf("InputFrames(%d) = %d does not cover the request", out, in)
		}
	}
}

func TestBlockSameRate(t *testing.T) {
	in := []int32{1, 2, 3, 4, 5, 6}
	out := make([]int32, len(in))

	n := Block(in, 2, 48000, 48000, out)
	if n != 3 {
		t.Fatalf("expected 3 frames, got %d", n)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestBlockUpsampling(t *testing.T) {
	// Doubling the rate doubles the frames, interpolating between inputs.
	in := []int32{0, 1000, 2000, 3000}
	out := make([]int32, OutputFrames(len(in), 22050, 44100))

	n := Block(in, 1, 22050, 44100, out)
	if n != 8 {
		t.Fatalf("expected 8 frames, got %d", n)
	}
	// Even positions reproduce inputs, odd positions sit between them.
	if out[0] != 0 || out[2] != 1000 || out[4] != 2000 {
		t.Errorf("input samples not preserved: %v", out)
	}
	if out[1] < 0 || out[1] > 1000 {
		t.Errorf("interpolated sample out of range: %d", out[1])
	}
}

func TestBlockDownsampling(t *testing.T) {
	in := make([]int32, 200)
	for i := range in {
		in[i] = int32(i * 10)
	}
	out := make([]int32, OutputFrames(100, 48000, 44100)*2)

	n := Block(in, 2, 48000, 44100, out)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	if n > 100 {
		t.Errorf("expected fewer frames after downsampling, got %d", n)
	}
}

func TestBlockStereoChannelsIndependent(t *testing.T) {
	in := make([]int32, 40)
	for i := 0; i < 20; i++ {
		in[i*2] = 1000
		in[i*2+1] = -1000
	}
	out := make([]int32, OutputFrames(20, 44100, 48000)*2)

	n := Block(in, 2, 44100, 48000, out)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	for i := 0; i < n; i++ {
		if out[i*2] != 1000 {
			t.Errorf("left frame %d: expected 1000, got %d", i, out[i*2])
		}
		if out[i*2+1] != -1000 {
			t.Errorf("right frame %d: expected -1000, got %d", i, out[i*2+1])
		}
	}
}

func TestBlockEmptyInput(t *testing.T) {
	out := make([]int32, 10)
	if n := Block(nil, 2, 44100, 48000, out); n != 0 {
		t.Errorf("expected 0 frames from empty input, got %d", n)
	}
}
