package wire

import "github.com/pkg/errors"

// InputBuffer is an in-memory input stream over an immutable byte span.
// It supports marking the current position and rewinding to it, which
// the tag-tree SAX reader (internal/nbt) relies on to resolve
// out-of-order prerequisites without re-reading the underlying socket.
type InputBuffer struct {
	data []byte
	pos  int
}

// NewInputBuffer wraps data for reading. data is not copied and must not
// be mutated while the buffer is in use.
func NewInputBuffer(data []byte) *InputBuffer {
	return &InputBuffer{data: data}
}

// Len reports the number of unread bytes remaining.
func (b *InputBuffer) Len() int { return len(b.data) - b.pos }

// Read copies exactly len(out) bytes into out, or fails with
// ErrUnderflow if fewer bytes remain.
func (b *InputBuffer) Read(out []byte) (int, error) {
	if len(out) > b.Len() {
		return 0, errors.WithStack(ErrUnderflow)
	}
	copy(out, b.data[b.pos:b.pos+len(out)])
	b.pos += len(out)
	return len(out), nil
}

// Skip advances n bytes without copying them, or fails with
// ErrUnderflow if fewer bytes remain.
func (b *InputBuffer) Skip(n int) error {
	if n > b.Len() {
		return errors.WithStack(ErrUnderflow)
	}
	b.pos += n
	return nil
}

// Mark captures the current read position.
type Mark struct {
	buf *InputBuffer
	pos int
}

// Mark returns a handle that can later rewind this buffer to the
// position it was at when Mark was called.
func (b *InputBuffer) Mark() Mark { return Mark{buf: b, pos: b.pos} }

// Reset rewinds the buffer to the marked position.
func (m Mark) Reset() { m.buf.pos = m.pos }

// reservedPrefixSize is the number of bytes OutputBuffer reserves at the
// front of its backing array for the length prefix.
const reservedPrefixSize = 5

// maxLengthPrefixedPayload bounds the payload size that
// LengthPrefixedData will accept: payload sizes must stay below it, so
// the size prefix never needs more than four variable-length bytes.
const maxLengthPrefixedPayload = 1 << 28

// OutputBuffer is a growable in-memory output stream. It reserves five
// bytes at the front of the backing array so a variable-length size
// prefix can be filled in after the payload is fully written, without
// copying the payload.
type OutputBuffer struct {
	data []byte
}

// NewOutputBuffer returns an empty output buffer with its length-prefix
// reservation already in place.
func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{data: make([]byte, reservedPrefixSize)}
}

// Write appends p to the payload.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Bytes returns the payload written so far, excluding the reserved
// prefix bytes.
func (b *OutputBuffer) Bytes() []byte { return b.data[reservedPrefixSize:] }

// LengthPrefixedData writes the current payload size as a variable-length
// 32-bit integer into the five reserved bytes, filling from the
// rightmost reserved byte (adjacent to the payload) inward, and returns
// the payload size along with a slice that begins at whichever reserved
// byte ended up holding the prefix's most-significant continuation byte
// and runs through the end of the payload. It fails with
// ErrPayloadTooLarge if the payload does not fit the bound.
func (b *OutputBuffer) LengthPrefixedData() (int, []byte, error) {
	size := len(b.data) - reservedPrefixSize
	if size >= maxLengthPrefixedPayload {
		return 0, nil, errors.WithStack(ErrPayloadTooLarge)
	}
	var tmp [reservedPrefixSize]byte
	n := WriteVarInt32(tmp[:], int32(size))
	copy(b.data[reservedPrefixSize-n:reservedPrefixSize], tmp[:n])
	return size, b.data[reservedPrefixSize-n:], nil
}
