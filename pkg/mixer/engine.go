// ABOUTME: Process-wide mixing engine
// ABOUTME: Initialization, channel array, admission policy and the device callback
package mixer

import (
	"fmt"
	"log"
	"sync"

	"github.com/mixforge/mixforge-go/pkg/audio"
	"github.com/mixforge/mixforge-go/pkg/audio/output"
)

// Boundary constants.
const (
	// FreeChannel asks Play to pick any idle non-reserved channel.
	FreeChannel = -1

	// AllChannels addresses every channel in bulk operations.
	AllChannels = -1

	// Infinite disables a timeout or marks endless looping.
	Infinite = -1

	// MaxVolume is unity gain.
	MaxVolume = audio.MaxVolume
)

// PlayPolicy selects the eviction victim when no idle channel is available.
type PlayPolicy int

const (
	// PolicyFail refuses the play request.
	PolicyFail PlayPolicy = iota
	// PolicyOldest evicts the channel that has been playing longest.
	PolicyOldest
	// PolicyPriority evicts the channel with the lowest source priority.
	PolicyPriority
	// PolicyOldestPriority evicts the oldest among the lowest-priority
	// channels.
	PolicyOldestPriority
)

// MixPolicy controls accumulator scaling after all channels have mixed.
type MixPolicy int

const (
	// MixDontDivide relies on saturation; the default.
	MixDontDivide MixPolicy = iota
	// MixDivide divides the accumulator by the channel count to prevent
	// clipping in dense scenes, at the cost of quiet ones.
	MixDivide
)

// Config holds engine construction options. The zero value selects the oto
// device, the system clock and the default policies.
type Config struct {
	Device     output.Device
	Clock      Clock
	PlayPolicy PlayPolicy
	MixPolicy  MixPolicy
}

// Engine is the process-wide mixer. It owns the channel array, reservation
// count, groups, admission policy and the device callback.
type Engine struct {
	mu sync.Mutex

	device       output.Device
	clock        Clock
	initialized  bool
	format       audio.Format
	bufferFrames int

	channels  []*Channel
	reserved  int
	groupLive []bool

	playPolicy   PlayPolicy
	mixPolicy    MixPolicy
	masterVolume int

	preFilters  []Filter
	postFilters []Filter

	// cbMu guards the finished hook so channels can fire it while holding
	// only their own lock.
	cbMu       sync.Mutex
	onFinished func(channel int)
}

// New creates an engine. Call Init before anything else.
func New(cfg Config) *Engine {
	if cfg.Device == nil {
		cfg.Device = output.NewOto()
	}
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	return &Engine{
		device:       cfg.Device,
		clock:        cfg.Clock,
		playPolicy:   cfg.PlayPolicy,
		mixPolicy:    cfg.MixPolicy,
		masterVolume: audio.MaxVolume,
	}
}

// Init opens the audio device and adopts the granted format as the mixer
// format. The channel array starts empty; call AllocateChannels next. The
// bool result reports whether the granted format matched the request
// exactly.
func (e *Engine) Init(freq int, enc audio.Encoding, channels, bufferMs int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return false, fmt.Errorf("%w: already initialized", ErrInvalidState)
	}

	granted, err := e.device.Open(output.Spec{
		Freq:     freq,
		Enc:      enc,
		Channels: channels,
		BufferMs: bufferMs,
		Callback: e.callback,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDevice, err)
	}

	e.format = granted.Format()
	e.bufferFrames = granted.BufferFrames()
	e.channels = nil
	e.reserved = 0
	e.groupLive = nil
	e.initialized = true

	exact := granted.Freq == freq && granted.Enc == enc && granted.Channels == channels
	log.Printf("Mixer initialized: %s (%d frame blocks)", e.format, e.bufferFrames)
	return exact, nil
}

// Quit stops every channel, closes the device and returns the engine to the
// uninitialized state.
func (e *Engine) Quit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return ErrNotInitialized
	}
	for _, ch := range e.channels {
		ch.Halt()
	}
	e.channels = nil
	e.groupLive = nil
	e.initialized = false

	if err := e.device.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrDevice, err)
	}
	return nil
}

// Format returns the mixer format negotiated with the device.
func (e *Engine) Format() audio.Format {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.format
}

// BufferFrames returns the callback block size in frames.
func (e *Engine) BufferFrames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bufferFrames
}

// AllocateChannels grows or shrinks the channel array and returns the new
// count. Channels removed by a shrink are stopped first, firing their
// finished handlers.
func (e *Engine) AllocateChannels(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: channel count %d", ErrOutOfRange, n)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return 0, ErrNotInitialized
	}

	for i := n; i < len(e.channels); i++ {
		e.channels[i].Halt()
	}
	if n < len(e.channels) {
		e.channels = e.channels[:n]
	}
	for i := len(e.channels); i < n; i++ {
		e.channels = append(e.channels, newChannel(e, i))
	}
	if e.reserved > n {
		e.reserved = n
	}
	return len(e.channels), nil
}

// ChannelCount returns the size of the channel array.
func (e *Engine) ChannelCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

// ReserveChannels marks channels [0, n) as off-limits to implicit
// allocation. Returns the reservation actually applied, clamped to the
// channel count.
func (e *Engine) ReserveChannels(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(e.channels) {
		n = len(e.channels)
	}
	e.reserved = n
	return e.reserved
}

// ReservedChannels returns the current reservation count.
func (e *Engine) ReservedChannels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reserved
}

// MasterVolume returns the master mix volume.
func (e *Engine) MasterVolume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.masterVolume
}

// SetMasterVolume sets the master mix volume in [0, MaxVolume].
func (e *Engine) SetMasterVolume(v int) error {
	if v < 0 || v > audio.MaxVolume {
		return fmt.Errorf("%w: volume %d", ErrOutOfRange, v)
	}
	e.mu.Lock()
	e.masterVolume = v
	e.mu.Unlock()
	return nil
}

// PlayPolicy returns the admission policy.
func (e *Engine) PlayPolicy() PlayPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playPolicy
}

// SetPlayPolicy sets the admission policy.
func (e *Engine) SetPlayPolicy(p PlayPolicy) {
	e.mu.Lock()
	e.playPolicy = p
	e.mu.Unlock()
}

// MixPolicy returns the accumulator scaling policy.
func (e *Engine) MixPolicy() MixPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixPolicy
}

// SetMixPolicy sets the accumulator scaling policy.
func (e *Engine) SetMixPolicy(p MixPolicy) {
	e.mu.Lock()
	e.mixPolicy = p
	e.mu.Unlock()
}

// AddPreFilter appends a global pre-filter. Pre-filters run on each
// channel's post-conversion contribution, after its own filters.
func (e *Engine) AddPreFilter(f Filter) {
	e.mu.Lock()
	e.preFilters = appendFilter(e.preFilters, f)
	e.mu.Unlock()
}

// AddPostFilter appends a global post-filter run over the summed
// accumulator.
func (e *Engine) AddPostFilter(f Filter) {
	e.mu.Lock()
	e.postFilters = appendFilter(e.postFilters, f)
	e.mu.Unlock()
}

// ClearPreFilters removes all global pre-filters.
func (e *Engine) ClearPreFilters() {
	e.mu.Lock()
	e.preFilters = nil
	e.mu.Unlock()
}

// ClearPostFilters removes all global post-filters.
func (e *Engine) ClearPostFilters() {
	e.mu.Lock()
	e.postFilters = nil
	e.mu.Unlock()
}

// OnChannelFinished registers the global hook fired after a channel's own
// handlers whenever any channel enters Idle.
func (e *Engine) OnChannelFinished(fn func(channel int)) {
	e.cbMu.Lock()
	e.onFinished = fn
	e.cbMu.Unlock()
}

func (e *Engine) notifyFinished(channel int) {
	e.cbMu.Lock()
	fn := e.onFinished
	e.cbMu.Unlock()
	if fn != nil {
		fn(channel)
	}
}

// Channel returns the channel at index i.
func (e *Engine) Channel(i int) (*Channel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if i < 0 || i >= len(e.channels) {
		return nil, fmt.Errorf("%w: channel %d", ErrOutOfRange, i)
	}
	return e.channels[i], nil
}

// PlayOpts carries the per-play parameters.
type PlayOpts struct {
	// Loops is the number of repeats after the first pass; Infinite loops
	// forever.
	Loops int

	// Timeout stops the channel after this many milliseconds; zero or
	// negative means no timeout.
	Timeout int

	// Target is a channel index, FreeChannel, or a group id.
	Target int
}

// Play starts src on a channel chosen per Target and the admission policy.
// Returns the channel index, or -1 when no channel could be claimed under
// PolicyFail (non-exceptional).
func (e *Engine) Play(src Source, opts PlayOpts) (int, error) {
	return e.admit(src, opts, FadeNone, 0)
}

// FadeIn starts src like Play, ramping the volume from silence over fadeMs
// milliseconds.
func (e *Engine) FadeIn(src Source, fadeMs int, opts PlayOpts) (int, error) {
	if fadeMs <= 0 {
		return e.admit(src, opts, FadeNone, 0)
	}
	return e.admit(src, opts, FadingIn, fadeMs)
}

func (e *Engine) admit(src Source, opts PlayOpts, fade FadeKind, fadeMs int) (int, error) {
	if src == nil {
		return -1, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return -1, ErrNotInitialized
	}
	if opts.Loops != 0 && !src.CanRewind() {
		return -1, fmt.Errorf("%w: looping a non-rewindable source", ErrInvalidArgument)
	}
	if _, err := audio.NewConverter(src.Format(), e.format); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if !src.CanSeek() {
		for _, ch := range e.channels {
			if ch.boundTo(src) {
				return -1, fmt.Errorf("%w: non-seekable source already playing on channel %d",
					ErrInvalidArgument, ch.index)
			}
		}
	}

	idx, err := e.claimLocked(opts.Target)
	if err != nil || idx < 0 {
		return idx, err
	}

	timeout := int64(Infinite)
	if opts.Timeout > 0 {
		timeout = int64(opts.Timeout)
	}
	e.channels[idx].start(src, opts.Loops, timeout, fade, int64(fadeMs), e.clock.NowMs())
	return idx, nil
}

// claimLocked resolves the target to a channel index, evicting per the play
// policy when needed. Returns -1 with no error when the request cannot be
// satisfied non-exceptionally.
func (e *Engine) claimLocked(target int) (int, error) {
	if target >= 0 {
		// Explicit targeting always wins, reservation included.
		if target >= len(e.channels) {
			return -1, fmt.Errorf("%w: channel %d", ErrOutOfRange, target)
		}
		return target, nil
	}

	var candidates []int
	switch {
	case target == FreeChannel:
		if e.reserved == len(e.channels) {
			return -1, nil
		}
		for i := e.reserved; i < len(e.channels); i++ {
			candidates = append(candidates, i)
		}
	default:
		if !e.groupLiveLocked(target) {
			return -1, fmt.Errorf("%w: group %d", ErrInvalidArgument, target)
		}
		for i := e.reserved; i < len(e.channels); i++ {
			if e.channels[i].groupTag() == target {
				candidates = append(candidates, i)
			}
		}
	}

	for _, i := range candidates {
		if e.channels[i].State() == StateIdle {
			return i, nil
		}
	}
	return e.evictLocked(candidates), nil
}

// evictLocked applies the play policy over the candidate set. All
// candidates are known to be busy.
func (e *Engine) evictLocked(candidates []int) int {
	if len(candidates) == 0 || e.playPolicy == PolicyFail {
		return -1
	}

	victim := -1
	for _, i := range candidates {
		ch := e.channels[i]
		if victim < 0 {
			victim = i
			continue
		}
		best := e.channels[victim]
		switch e.playPolicy {
		case PolicyOldest:
			if ch.StartTime() < best.StartTime() {
				victim = i
			}
		case PolicyPriority:
			if ch.sourcePriority() < best.sourcePriority() {
				victim = i
			}
		case PolicyOldestPriority:
			cp, bp := ch.sourcePriority(), best.sourcePriority()
			if cp < bp || (cp == bp && ch.StartTime() < best.StartTime()) {
				victim = i
			}
		}
	}
	return victim
}

// callback is the device entry point. It runs on the device's callback
// thread under the engine lock.
func (e *Engine) callback(acc []int32, frames int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range acc {
		acc[i] = 0
	}
	if !e.initialized {
		return
	}

	now := e.clock.NowMs()
	pre := e.preFilters

	for _, ch := range e.channels {
		ch.mix(acc, frames, pre, now)
	}
	for _, f := range e.postFilters {
		f(acc, frames, e.format)
	}
	if e.mixPolicy == MixDivide {
		audio.DivideAccumulator(acc, int32(len(e.channels)))
	}
	if e.masterVolume != audio.MaxVolume {
		audio.VolumeScale(acc, e.masterVolume)
	}
}
