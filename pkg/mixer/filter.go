// ABOUTME: Filter chain definitions
// ABOUTME: Per-channel and global accumulator filters with snapshot semantics
package mixer

import "github.com/mixforge/mixforge-go/pkg/audio"

// Filter processes a block of accumulator samples in place. The format is
// always the mixer format; frames*format.Channels samples are present.
type Filter func(buf []int32, frames int, format audio.Format)

// appendFilter returns a new chain with f appended. Chains are treated as
// immutable snapshots so a callback in flight never observes a mutation.
func appendFilter(chain []Filter, f Filter) []Filter {
	next := make([]Filter, len(chain), len(chain)+1)
	copy(next, chain)
	return append(next, f)
}
