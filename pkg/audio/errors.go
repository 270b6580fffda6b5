// ABOUTME: Sentinel errors for the audio package
// ABOUTME: Raised by conversion primitives and converter setup
package audio

import "errors"

var (
	// ErrUnsupported is returned when a conversion between the given
	// formats cannot be built.
	ErrUnsupported = errors.New("audio: unsupported conversion")

	// ErrShortBuffer is returned when a primitive is asked to process more
	// samples than the supplied buffer holds.
	ErrShortBuffer = errors.New("audio: short buffer")
)
