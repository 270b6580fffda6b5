// ABOUTME: Frame decoder interface definition
// ABOUTME: Common interface over file format decoders producing native PCM
package decode

import (
	"errors"
	"io"

	"github.com/mixforge/mixforge-go/pkg/audio"
)

// LengthUnknown is returned by Length when the decoder cannot tell how many
// frames the stream holds.
const LengthUnknown = -1

var (
	// ErrUnseekable is returned by Seek when the underlying stream does not
	// support repositioning.
	ErrUnseekable = errors.New("decode: stream does not support seeking")
)

// Decoder produces whole frames of PCM in the decoder's native format.
// Read fills p with as many whole frames as fit and returns the number of
// bytes read; io.EOF signals end of stream.
type Decoder interface {
	io.Reader

	// Format returns the decoder's native PCM format. Constant for the
	// lifetime of the decoder.
	Format() audio.Format

	// Length returns the total number of frames, or LengthUnknown.
	Length() int64

	// Seekable reports whether Seek can reposition the stream.
	Seekable() bool

	// Seek repositions the stream to the given frame offset.
	Seek(frame int64) error
}
