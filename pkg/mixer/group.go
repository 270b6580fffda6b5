// ABOUTME: Channel groups and bulk operations
// ABOUTME: Negative group ids, membership edits and scoped pause/stop/fade
package mixer

import "fmt"

// Group ids are small negative integers (-slot - 2) so they can share the
// Target parameter with channel indices and the FreeChannel/AllChannels
// sentinels. Removed slots are tombstoned; their ids stay invalid until the
// slot is reused.

func groupSlot(g int) int { return -g - 2 }
func groupID(slot int) int { return -slot - 2 }

func (e *Engine) groupLiveLocked(g int) bool {
	slot := groupSlot(g)
	return slot >= 0 && slot < len(e.groupLive) && e.groupLive[slot]
}

// NewGroup allocates a group and returns its id.
func (e *Engine) NewGroup() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	for slot, live := range e.groupLive {
		if !live {
			e.groupLive[slot] = true
			return groupID(slot)
		}
	}
	e.groupLive = append(e.groupLive, true)
	return groupID(len(e.groupLive) - 1)
}

// RemoveGroup dissolves a group. Member channels are untagged; other group
// ids are unaffected.
func (e *Engine) RemoveGroup(g int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.groupLiveLocked(g) {
		return fmt.Errorf("%w: group %d", ErrInvalidArgument, g)
	}
	e.groupLive[groupSlot(g)] = false
	for _, ch := range e.channels {
		if ch.groupTag() == g {
			ch.setGroupTag(0)
		}
	}
	return nil
}

// GroupChannel adds channel i to group g, replacing any previous
// membership.
func (e *Engine) GroupChannel(i, g int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.groupLiveLocked(g) {
		return fmt.Errorf("%w: group %d", ErrInvalidArgument, g)
	}
	if i < 0 || i >= len(e.channels) {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, i)
	}
	e.channels[i].setGroupTag(g)
	return nil
}

// UngroupChannel removes channel i from whatever group it is in.
func (e *Engine) UngroupChannel(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i < 0 || i >= len(e.channels) {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, i)
	}
	e.channels[i].setGroupTag(0)
	return nil
}

// GroupRange adds channels [lo, hi] to group g.
func (e *Engine) GroupRange(lo, hi, g int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.groupLiveLocked(g) {
		return fmt.Errorf("%w: group %d", ErrInvalidArgument, g)
	}
	if lo < 0 || hi >= len(e.channels) || lo > hi {
		return fmt.Errorf("%w: range [%d, %d]", ErrOutOfRange, lo, hi)
	}
	for i := lo; i <= hi; i++ {
		e.channels[i].setGroupTag(g)
	}
	return nil
}

// GroupCount returns the number of channels in group g, or the total
// channel count for AllChannels.
func (e *Engine) GroupCount(g int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g == AllChannels {
		return len(e.channels)
	}
	n := 0
	for _, ch := range e.channels {
		if ch.groupTag() == g {
			n++
		}
	}
	return n
}

// GroupChannels returns the indices of the channels in group g.
func (e *Engine) GroupChannels(g int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []int
	for i, ch := range e.channels {
		if ch.groupTag() == g {
			out = append(out, i)
		}
	}
	return out
}

// scopeLocked resolves which (a channel index, AllChannels, or a group id)
// to a channel list.
func (e *Engine) scopeLocked(which int) ([]*Channel, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	switch {
	case which == AllChannels:
		return e.channels, nil
	case which >= 0:
		if which >= len(e.channels) {
			return nil, fmt.Errorf("%w: channel %d", ErrOutOfRange, which)
		}
		return e.channels[which : which+1], nil
	default:
		if !e.groupLiveLocked(which) {
			return nil, fmt.Errorf("%w: group %d", ErrInvalidArgument, which)
		}
		var out []*Channel
		for _, ch := range e.channels {
			if ch.groupTag() == which {
				out = append(out, ch)
			}
		}
		return out, nil
	}
}

// Pause suspends which: a channel index, AllChannels, or a group id.
func (e *Engine) Pause(which int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	chs, err := e.scopeLocked(which)
	if err != nil {
		return err
	}
	for _, ch := range chs {
		ch.Pause()
	}
	return nil
}

// Resume continues paused channels in scope.
func (e *Engine) Resume(which int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	chs, err := e.scopeLocked(which)
	if err != nil {
		return err
	}
	for _, ch := range chs {
		ch.Resume()
	}
	return nil
}

// Halt stops channels in scope, firing their finished handlers.
func (e *Engine) Halt(which int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	chs, err := e.scopeLocked(which)
	if err != nil {
		return err
	}
	for _, ch := range chs {
		ch.Halt()
	}
	return nil
}

// FadeOut ramps channels in scope to silence over ms milliseconds and
// returns how many non-idle channels it applied the fade to. A non-positive
// ms halts those channels at once; they are still counted.
func (e *Engine) FadeOut(which, ms int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	chs, err := e.scopeLocked(which)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ch := range chs {
		if ch.State() != StateIdle {
			ch.FadeOut(ms)
			n++
		}
	}
	return n, nil
}

// OldestChannel returns the non-idle channel with the greatest age in
// scope (AllChannels or a group id), or -1 when none is playing. Reserved
// channels are skipped unless includeReserved is set.
func (e *Engine) OldestChannel(scope int, includeReserved bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldest := -1
	var oldestStart int64
	for i, ch := range e.channels {
		if !includeReserved && i < e.reserved {
			continue
		}
		if scope != AllChannels && ch.groupTag() != scope {
			continue
		}
		if ch.State() == StateIdle {
			continue
		}
		if start := ch.StartTime(); oldest < 0 || start < oldestStart {
			oldest = i
			oldestStart = start
		}
	}
	return oldest
}
