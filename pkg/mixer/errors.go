// ABOUTME: Sentinel errors for the mixer package
// ABOUTME: Maps engine failure conditions to wrappable error values
package mixer

import "errors"

var (
	// ErrNotInitialized is returned by engine operations before Init or
	// after Quit.
	ErrNotInitialized = errors.New("mixer: not initialized")

	// ErrInvalidState is returned when Init is called on an engine that is
	// already running.
	ErrInvalidState = errors.New("mixer: invalid state")

	// ErrOutOfRange is returned for volumes outside [0, 256], negative
	// rates, bad channel indices and positions outside a source's range.
	ErrOutOfRange = errors.New("mixer: value out of range")

	// ErrInvalidArgument is returned for loop requests on non-rewindable
	// sources, sharing a non-seekable source across channels, stale group
	// ids and sources whose format cannot be converted.
	ErrInvalidArgument = errors.New("mixer: invalid argument")

	// ErrUnsupported is returned for operations a source cannot provide,
	// such as ReadAll on a stream of unknown length.
	ErrUnsupported = errors.New("mixer: unsupported operation")

	// ErrDevice wraps failures surfaced from the host audio device.
	ErrDevice = errors.New("mixer: device error")
)
