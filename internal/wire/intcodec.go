package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Reader reads the fixed-width and variable-length primitives defined by
// the wire format from an underlying byte source. It adds no buffering of
// its own; wrap a *bufio.Reader (streaming) or an *InputBuffer (in-memory,
// markable) depending on the caller's needs.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for primitive decoding.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

func (r *Reader) fill(buf []byte) error {
	_, err := io.ReadFull(r.r, buf)
	return err
}

// ReadS8 reads a signed 8-bit integer.
func (r *Reader) ReadS8() (int8, error) {
	var b [1]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) {
	var b [1]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadS16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadS16() (int16, error) {
	var b [2]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

// ReadU16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	var b [2]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// ReadS32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadS32() (int32, error) {
	var b [4]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// ReadU32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	var b [4]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// ReadS64 reads a big-endian signed 64-bit integer.
func (r *Reader) ReadS64() (int64, error) {
	var b [8]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// ReadU64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) ReadU64() (uint64, error) {
	var b [8]byte
	if err := r.fill(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// ReadF32 reads a big-endian IEEE-754 32-bit float.
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads a big-endian IEEE-754 64-bit float.
func (r *Reader) ReadF64() (float64, error) {
	bits, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadVarInt32 decodes a variable-length signed 32-bit integer: up to 5
// bytes, 7 payload bits each with the high bit as a continuation flag.
// The fifth byte's value must not exceed 0x0F (the top nibble of a
// sign-extended 32-bit value), else ErrMalformedVarInt.
func (r *Reader) ReadVarInt32() (int32, int, error) {
	var value int32
	for i := 0; i < 5; i++ {
		cur, err := r.ReadU8()
		if err != nil {
			return 0, i, err
		}
		value |= int32(cur&0x7f) << uint(i*7)
		if i == 4 {
			if cur > 0x0f {
				return 0, i + 1, errors.WithStack(ErrMalformedVarInt)
			}
			return value, i + 1, nil
		}
		if cur&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 5, errors.WithStack(ErrMalformedVarInt)
}

// ReadVarInt64 decodes a variable-length signed 64-bit integer: up to 10
// bytes, with the tenth byte's value bounded to 0 or 1.
func (r *Reader) ReadVarInt64() (int64, int, error) {
	var value int64
	for i := 0; i < 10; i++ {
		cur, err := r.ReadU8()
		if err != nil {
			return 0, i, err
		}
		value |= int64(cur&0x7f) << uint(i*7)
		if i == 9 {
			if cur > 0x01 {
				return 0, i + 1, errors.WithStack(ErrMalformedVarInt)
			}
			return value, i + 1, nil
		}
		if cur&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 10, errors.WithStack(ErrMalformedVarInt)
}

// Writer writes the fixed-width and variable-length primitives defined by
// the wire format to an underlying byte sink.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for primitive encoding.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) emit(buf []byte) error {
	_, err := w.w.Write(buf)
	return err
}

// WriteS8 writes a signed 8-bit integer.
func (w *Writer) WriteS8(v int8) error { return w.emit([]byte{byte(v)}) }

// WriteU8 writes an unsigned 8-bit integer.
func (w *Writer) WriteU8(v uint8) error { return w.emit([]byte{v}) }

// WriteS16 writes a big-endian signed 16-bit integer.
func (w *Writer) WriteS16(v int16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return w.emit(b[:])
}

// WriteU16 writes a big-endian unsigned 16-bit integer.
func (w *Writer) WriteU16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.emit(b[:])
}

// WriteS32 writes a big-endian signed 32-bit integer.
func (w *Writer) WriteS32(v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return w.emit(b[:])
}

// WriteU32 writes a big-endian unsigned 32-bit integer.
func (w *Writer) WriteU32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.emit(b[:])
}

// WriteS64 writes a big-endian signed 64-bit integer.
func (w *Writer) WriteS64(v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return w.emit(b[:])
}

// WriteU64 writes a big-endian unsigned 64-bit integer.
func (w *Writer) WriteU64(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return w.emit(b[:])
}

// WriteF32 writes a big-endian IEEE-754 32-bit float.
func (w *Writer) WriteF32(v float32) error { return w.WriteU32(math.Float32bits(v)) }

// WriteF64 writes a big-endian IEEE-754 64-bit float.
func (w *Writer) WriteF64(v float64) error { return w.WriteU64(math.Float64bits(v)) }

// WriteVarInt32 encodes a signed 32-bit integer least-significant-7-bits
// first, setting the continuation bit on every byte but the last, and
// returns the number of bytes written.
func WriteVarInt32(buf []byte, v int32) int {
	value := uint32(v)
	n := 0
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if value == 0 {
			return n
		}
	}
}

// WriteVarInt32Len reports how many bytes WriteVarInt32 would emit for v.
func WriteVarInt32Len(v int32) int {
	value := uint32(v)
	n := 1
	for value >>= 7; value != 0; value >>= 7 {
		n++
	}
	return n
}

// WriteVarInt32 writes a variable-length signed 32-bit integer.
func (w *Writer) WriteVarInt32(v int32) error {
	var buf [5]byte
	n := WriteVarInt32(buf[:], v)
	return w.emit(buf[:n])
}

// WriteVarInt64 writes a variable-length signed 64-bit integer.
func (w *Writer) WriteVarInt64(v int64) error {
	var buf [10]byte
	value := uint64(v)
	n := 0
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if value == 0 {
			break
		}
	}
	return w.emit(buf[:n])
}
