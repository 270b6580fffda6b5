// ABOUTME: Audio device interface definition
// ABOUTME: Pull-callback contract between the engine and a host backend
package output

import "github.com/mixforge/mixforge-go/pkg/audio"

// Callback is invoked by the device whenever it needs audio. The slice holds
// frames*channels accumulator samples; the engine fills it and the device
// converts to its native depth on the way out.
type Callback func(acc []int32, frames int)

// Spec describes the stream a device is asked to open.
type Spec struct {
	Freq     int
	Enc      audio.Encoding
	Channels int
	BufferMs int
	Callback Callback
}

// Format returns the spec's stream format.
func (s Spec) Format() audio.Format {
	return audio.Format{Freq: s.Freq, Enc: s.Enc, Channels: s.Channels}
}

// BufferFrames returns the callback block size in frames.
func (s Spec) BufferFrames() int {
	return s.Freq * s.BufferMs / 1000
}

// Device is a host audio backend. Open negotiates the stream and returns the
// granted spec, which may differ from the request; the engine adopts the
// granted format as the mixer format. The callback runs on a thread the
// device owns.
type Device interface {
	Open(spec Spec) (Spec, error)
	Pause(paused bool)
	Close() error
}
