// Package framer implements the length-prefixed packet framing state
// machine that sits directly on a non-blocking socket: a VarInt32 byte
// count followed by that many body bytes, decoded incrementally so a
// single edge-triggered readable event can be drained down to the last
// complete packet available without blocking.
package framer

import "github.com/pkg/errors"

var (
	// ErrZeroLengthPacket is returned when a packet declares a length of
	// zero; the format never uses empty packets.
	ErrZeroLengthPacket = errors.New("framer: zero-length packet")

	// ErrPacketTooLarge is returned when a packet's declared length
	// exceeds the configured maximum.
	ErrPacketTooLarge = errors.New("framer: packet exceeds maximum size")

	// ErrMalformedLength is returned when the length prefix runs past
	// its 5-byte bound without terminating.
	ErrMalformedLength = errors.New("framer: malformed length prefix")
)
