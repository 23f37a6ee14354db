// Package wire implements the game's binary wire primitives: fixed and
// variable-length integers, the UTF-8/UTF-16 string codec, and the
// in-memory buffer streams used to assemble length-prefixed payloads.
package wire

import "github.com/pkg/errors"

// Sentinel errors returned by the codecs in this package. Callers should
// use errors.Is against these values; they are returned through
// errors.WithStack so the underlying sentinel survives unwrapping.
var (
	// ErrUnderflow is returned when a read or skip asks for more bytes
	// than remain in an input buffer stream.
	ErrUnderflow = errors.New("wire: buffer underflow")

	// ErrMalformedVarInt is returned when a variable-length integer
	// exceeds its maximum encoded width or its final byte carries bits
	// outside the type's sign-extension bound.
	ErrMalformedVarInt = errors.New("wire: malformed variable-length integer")

	// ErrMalformedUtf8 is returned when a UTF-8 byte sequence has an
	// invalid leading byte, a missing or ill-formed continuation byte,
	// or does not consume exactly the declared byte count.
	ErrMalformedUtf8 = errors.New("wire: malformed utf-8 sequence")

	// ErrMalformedUtf16 is returned when encoding a code-unit sequence
	// that contains a high surrogate with no matching low surrogate.
	ErrMalformedUtf16 = errors.New("wire: malformed utf-16 sequence")

	// ErrPayloadTooLarge is returned when an output buffer stream's
	// payload is 1<<28 bytes or larger.
	ErrPayloadTooLarge = errors.New("wire: payload too large for length prefix")

	// ErrStringTooLong is returned when a decoded string exceeds its
	// declared code-unit or byte-length bound.
	ErrStringTooLong = errors.New("wire: string exceeds length bound")
)
