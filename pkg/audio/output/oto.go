// ABOUTME: Oto-based audio device implementation
// ABOUTME: Drives the engine callback from oto's pull reader
package output

import (
	"fmt"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// Oto is a Device backed by the oto library. Oto pulls PCM through an
// io.Reader on a thread it owns; each Read becomes one engine callback.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
	spec   Spec
}

// NewOto creates an oto-backed device.
func NewOto() *Oto {
	return &Oto{}
}

// Open negotiates the stream. Oto emits signed 16-bit little-endian only,
// so the granted encoding is always S16LSB.
func (o *Oto) Open(spec Spec) (Spec, error) {
	if o.ctx != nil {
		return Spec{}, fmt.Errorf("oto: device already open")
	}
	if spec.BufferMs <= 0 {
		spec.BufferMs = 100
	}

	op := &oto.NewContextOptions{
		SampleRate:   spec.Freq,
		ChannelCount: spec.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(spec.BufferMs) * time.Millisecond,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return Spec{}, fmt.Errorf("oto: failed to create context: %w", err)
	}
	<-readyChan

	granted := spec
	granted.Enc = audio.S16LSB

	o.ctx = ctx
	o.spec = granted

	o.player = ctx.NewPlayer(&pullReader{spec: granted})
	o.player.Play()

	log.Printf("Audio device opened: %dHz, %d channels, %dms buffer",
		granted.Freq, granted.Channels, granted.BufferMs)

	return granted, nil
}

// Pause suspends or resumes callback delivery.
func (o *Oto) Pause(paused bool) {
	if o.player == nil {
		return
	}
	if paused {
		o.player.Pause()
	} else {
		o.player.Play()
	}
}

// Close stops playback and releases the device.
func (o *Oto) Close() error {
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.ctx != nil {
		o.ctx.Suspend()
		o.ctx = nil
	}
	return nil
}

// pullReader adapts oto's pull model to the engine callback: each Read
// fills an accumulator block, then narrows it to 16-bit on the way out.
type pullReader struct {
	spec Spec
	acc  []int32
}

func (r *pullReader) Read(p []byte) (int, error) {
	frameSize := r.spec.Channels * 2 // oto output is always 16-bit
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}

	samples := frames * r.spec.Channels
	if cap(r.acc) < samples {
		r.acc = make([]int32, samples)
	}
	r.acc = r.acc[:samples]
	for i := range r.acc {
		r.acc[i] = 0
	}

	if r.spec.Callback != nil {
		r.spec.Callback(r.acc, frames)
	}

	// Clipping to the device depth happens exactly once, here.
	if err := audio.ConvertAcc(p, r.acc, samples, audio.S16LSB); err != nil {
		return 0, fmt.Errorf("oto: %w", err)
	}
	return samples * 2, nil
}
