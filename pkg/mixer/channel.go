// ABOUTME: Playback channel bound to one source
// ABOUTME: Owns loop, timeout, fade state and the per-callback mix pass
package mixer

import (
	"io"
	"log"
	"sync"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// State is a channel's playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// FadeKind describes an in-flight volume ramp.
type FadeKind int

const (
	FadeNone FadeKind = iota
	FadingIn
	FadingOut
)

// Channel is a playback slot. Channels are created by the engine and keep
// their index for the engine's lifetime; binding a new source replaces the
// previous playback.
type Channel struct {
	engine *Engine
	index  int

	mu sync.Mutex

	src      Source
	state    State
	volume   int
	rate     float64
	loops    int
	timeout  int64 // ms, Infinite for none
	startMs  int64
	position int64

	fade         FadeKind
	fadeStartMs  int64
	fadeDurMs    int64
	fadeStartVol int

	group int // group id, or 0 when untagged

	filters  []Filter
	finished []func(channel int)

	// Conversion cache: rebuilt only on bind or when the snapped source
	// frequency changes. Scratch buffers grow monotonically.
	conv      *audio.Converter
	convFreq  int
	scratch   []byte
	filterBuf []int32
}

func newChannel(e *Engine, index int) *Channel {
	return &Channel{
		engine: e,
		index:  index,
		volume: audio.MaxVolume,
		rate:   1.0,
	}
}

// Index returns the channel's stable index.
func (c *Channel) Index() int { return c.index }

// start binds src and begins playback. Any previous binding is stopped
// first, firing its finished handlers.
func (c *Channel) start(src Source, loops int, timeoutMs int64, fade FadeKind, fadeMs int64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		c.finishLocked()
	}

	c.src = src
	c.loops = loops
	c.timeout = timeoutMs
	c.position = 0
	c.startMs = nowMs
	c.state = StatePlaying

	c.fade = fade
	c.fadeStartMs = nowMs
	c.fadeDurMs = fadeMs
	c.fadeStartVol = 0

	c.conv = nil
	c.convFreq = 0
}

// Pause suspends playback; the channel keeps its binding and position.
func (c *Channel) Pause() {
	c.mu.Lock()
	if c.state == StatePlaying {
		c.state = StatePaused
	}
	c.mu.Unlock()
}

// Resume continues a paused channel.
func (c *Channel) Resume() {
	c.mu.Lock()
	if c.state == StatePaused {
		c.state = StatePlaying
	}
	c.mu.Unlock()
}

// Halt stops the channel. The finished handlers fire before Halt returns;
// after that the channel contributes silence until the next start.
func (c *Channel) Halt() {
	c.mu.Lock()
	if c.state != StateIdle {
		c.finishLocked()
	}
	c.mu.Unlock()
}

// FadeOut ramps the channel to silence over ms milliseconds and then stops
// it. A non-positive duration stops immediately.
func (c *Channel) FadeOut(ms int) {
	if ms <= 0 {
		c.Halt()
		return
	}
	now := c.engine.clock.NowMs()

	c.mu.Lock()
	if c.state != StateIdle {
		c.fadeStartVol = c.fadeVolumeLocked(now)
		c.fade = FadingOut
		c.fadeStartMs = now
		c.fadeDurMs = int64(ms)
	}
	c.mu.Unlock()
}

// State returns the channel's playback state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Playing reports whether the channel is actively producing samples.
func (c *Channel) Playing() bool { return c.State() == StatePlaying }

// Paused reports whether the channel is paused.
func (c *Channel) Paused() bool { return c.State() == StatePaused }

// Fading returns the kind of fade in progress.
func (c *Channel) Fading() FadeKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fade
}

// Volume returns the channel volume.
func (c *Channel) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// SetVolume sets the channel volume in [0, MaxVolume].
func (c *Channel) SetVolume(v int) error {
	if v < 0 || v > audio.MaxVolume {
		return ErrOutOfRange
	}
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
	return nil
}

// Rate returns the channel rate multiplier.
func (c *Channel) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetRate sets the channel rate multiplier (>= 0). The effective playback
// rate is the product of the source and channel rates.
func (c *Channel) SetRate(r float64) error {
	if r < 0 {
		return ErrOutOfRange
	}
	c.mu.Lock()
	c.rate = r
	c.mu.Unlock()
	return nil
}

// Position returns the frame offset the channel will read next.
func (c *Channel) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// SetPosition is advisory: the next mix pass seeks the source there if the
// source supports seeking.
func (c *Channel) SetPosition(frame int64) error {
	if frame < 0 {
		return ErrOutOfRange
	}
	c.mu.Lock()
	c.position = frame
	c.mu.Unlock()
	return nil
}

// StartTime returns the engine timestamp when the current playback began.
func (c *Channel) StartTime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startMs
}

// AddFilter appends a per-channel filter. Filters run on the channel's
// post-conversion contribution at unity volume.
func (c *Channel) AddFilter(f Filter) {
	c.mu.Lock()
	c.filters = appendFilter(c.filters, f)
	c.mu.Unlock()
}

// ClearFilters removes all per-channel filters.
func (c *Channel) ClearFilters() {
	c.mu.Lock()
	c.filters = nil
	c.mu.Unlock()
}

// OnFinished registers a handler fired when this channel enters Idle. It
// runs synchronously, before the engine's global hook.
func (c *Channel) OnFinished(fn func(channel int)) {
	c.mu.Lock()
	c.finished = append(append([]func(channel int){}, c.finished...), fn)
	c.mu.Unlock()
}

func (c *Channel) groupTag() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

func (c *Channel) setGroupTag(g int) {
	c.mu.Lock()
	c.group = g
	c.mu.Unlock()
}

// sourcePriority returns the bound source's priority, or the highest
// possible when idle.
func (c *Channel) sourcePriority() int {
	c.mu.Lock()
	src := c.src
	c.mu.Unlock()
	if src == nil {
		return int(^uint(0) >> 1) // idle channels are never eviction victims
	}
	return src.Priority()
}

// boundTo reports whether the channel currently plays src.
func (c *Channel) boundTo(src Source) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle && c.src == src
}

// effectiveVolumeLocked combines the channel and source volumes.
func (c *Channel) effectiveVolumeLocked() int {
	v := c.volume
	if c.src != nil {
		if sv := c.src.Volume(); sv != audio.MaxVolume {
			v = v * sv >> 8
		}
	}
	return v
}

// fadeVolumeLocked returns the volume currently being applied, taking any
// in-flight fade into account.
func (c *Channel) fadeVolumeLocked(nowMs int64) int {
	v := c.effectiveVolumeLocked()
	if c.fade == FadeNone || c.fadeDurMs <= 0 {
		return v
	}
	elapsed := nowMs - c.fadeStartMs
	if elapsed >= c.fadeDurMs {
		if c.fade == FadingOut {
			return 0
		}
		return v
	}
	if c.fade == FadingOut {
		return int(int64(c.fadeStartVol) * (c.fadeDurMs - elapsed) / c.fadeDurMs)
	}
	return int(int64(v) * elapsed / c.fadeDurMs)
}

// finishLocked transitions the channel to Idle and fires the finished
// handlers: the channel's own first, then the engine's global hook, while
// the channel lock is held.
func (c *Channel) finishLocked() {
	c.src = nil
	c.state = StateIdle
	c.fade = FadeNone

	for _, fn := range c.finished {
		fn(c.index)
	}
	c.engine.notifyFinished(c.index)
}

// mix renders the channel's contribution for one callback block. acc holds
// frames * mixer.Channels accumulator samples starting at the block head.
func (c *Channel) mix(acc []int32, frames int, preFilters []Filter, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying || c.src == nil || frames <= 0 {
		return
	}

	if c.timeout >= 0 && nowMs-c.startMs > c.timeout {
		c.finishLocked()
		return
	}

	effVol := c.effectiveVolumeLocked()
	if c.fade != FadeNone {
		elapsed := nowMs - c.fadeStartMs
		if elapsed >= c.fadeDurMs {
			if c.fade == FadingOut {
				c.finishLocked()
				return
			}
			c.fade = FadeNone
		} else if c.fade == FadingOut {
			effVol = int(int64(c.fadeStartVol) * (c.fadeDurMs - elapsed) / c.fadeDurMs)
		} else {
			effVol = int(int64(effVol) * elapsed / c.fadeDurMs)
		}
	}

	// Guard against other channels having moved a shared seekable source.
	if c.src.CanSeek() {
		if err := c.src.SetPosition(c.position); err != nil {
			log.Printf("channel %d: seek failed: %v", c.index, err)
			c.finishLocked()
			return
		}
	}

	mixerFormat := c.engine.format
	mixerCh := mixerFormat.Channels

	useFilters := len(c.filters) > 0 || len(preFilters) > 0

	var produced int
	var ended bool
	if useFilters {
		need := frames * mixerCh
		if cap(c.filterBuf) < need {
			c.filterBuf = make([]int32, need)
		}
		c.filterBuf = c.filterBuf[:need]
		for i := range c.filterBuf {
			c.filterBuf[i] = 0
		}
		produced, ended = c.produceLocked(c.filterBuf, frames, audio.MaxVolume)
		if produced > 0 {
			seg := c.filterBuf[:produced*mixerCh]
			for _, f := range c.filters {
				f(seg, produced, mixerFormat)
			}
			for _, f := range preFilters {
				f(seg, produced, mixerFormat)
			}
			audio.Mix(acc[:len(seg)], seg, effVol)
		}
	} else {
		produced, ended = c.produceLocked(acc, frames, effVol)
	}

	if c.src != nil {
		c.position = c.src.Position()
	}
	if ended {
		c.finishLocked()
	}
}

// produceLocked fills dst with up to frames frames of the source's
// contribution, converting to the mixer format as needed and rewinding for
// loops. Samples are accumulated at the given volume. The second return is
// true when the source ended with no loops remaining.
func (c *Channel) produceLocked(dst []int32, frames, volume int) (int, bool) {
	mixerFormat := c.engine.format
	mixerCh := mixerFormat.Channels

	effRate := c.src.Rate() * c.rate
	direct := c.src.Format() == mixerFormat && effRate == 1.0

	if !direct {
		snapped := c.src.Format().Freq
		if effRate != 1.0 {
			snapped = audio.SnapFrequency(snapped, effRate)
			if snapped == 0 {
				return 0, false
			}
		}
		if c.conv == nil || c.convFreq != snapped {
			srcFormat := c.src.Format()
			srcFormat.Freq = snapped
			conv, err := audio.NewConverter(srcFormat, mixerFormat)
			if err != nil {
				log.Printf("channel %d: conversion setup failed: %v", c.index, err)
				return 0, true
			}
			c.conv = conv
			c.convFreq = snapped
		}
	}

	produced := 0
	rewound := false
	for produced < frames {
		remaining := frames - produced

		if direct {
			n, err := c.src.ReadFrames(dst[produced*mixerCh:], remaining, volume)
			if n > 0 {
				produced += n
				rewound = false
				continue
			}
			if err != nil && err != io.EOF {
				log.Printf("channel %d: read failed: %v", c.index, err)
				return produced, true
			}
			// An empty source would rewind forever.
			if rewound || !c.loopLocked() {
				return produced, true
			}
			rewound = true
			continue
		}

		want := c.conv.SourceBytes(remaining * mixerFormat.FrameSize())
		if cap(c.scratch) < want {
			c.scratch = make([]byte, want)
		}
		n, err := c.src.ReadBytes(c.scratch[:want])
		if n == 0 {
			if err != nil && err != io.EOF {
				log.Printf("channel %d: read failed: %v", c.index, err)
				return produced, true
			}
			if rewound || !c.loopLocked() {
				return produced, true
			}
			rewound = true
			continue
		}
		rewound = false

		out, outLen := c.conv.Convert(c.scratch[:cap(c.scratch)], n)
		c.scratch = out
		outFrames := outLen / mixerFormat.FrameSize()
		if outFrames > remaining {
			outFrames = remaining
		}
		if outFrames == 0 {
			// A tail too small to produce a frame at this ratio.
			return produced, false
		}
		audio.ConvertMix(dst[produced*mixerCh:], out, outFrames*mixerCh, mixerFormat.Enc, volume)
		produced += outFrames
		if n == want {
			// A full read satisfies the pass; rounding at the rate
			// boundary may leave the block up to one frame short.
			break
		}
	}
	return produced, false
}

// loopLocked rewinds the source for another loop iteration. Returns false
// when no loops remain or the source cannot rewind.
func (c *Channel) loopLocked() bool {
	if c.loops == 0 {
		return false
	}
	if err := c.src.Rewind(); err != nil {
		log.Printf("channel %d: rewind failed: %v", c.index, err)
		return false
	}
	c.position = 0
	if c.loops > 0 {
		c.loops--
	}
	return true
}
