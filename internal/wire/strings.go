package wire

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultUStringBound is the maximum code-unit count the protocol
// enforces on a UString when no caller-supplied bound is given.
const DefaultUStringBound = 32767

// MaxJStringBytes is the largest byte length a JString's 16-bit prefix
// can declare.
const MaxJStringBytes = 65535

// ReadUString decodes a UString: a VarInt32 byte count followed by UTF-8
// bytes, converted to UTF-16 code units. maxUnits bounds the resulting
// code-unit count (0 disables the bound); the wire byte count must also
// satisfy bytes <= 4*maxUnits when the bound is active.
func ReadUString(r *Reader, maxUnits int) ([]uint16, error) {
	byteLen, _, err := r.ReadVarInt32()
	if err != nil {
		return nil, err
	}
	if byteLen < 0 {
		return nil, errors.WithStack(ErrStringTooLong)
	}
	if maxUnits > 0 && int(byteLen) > maxUnits*4 {
		return nil, errors.WithStack(ErrStringTooLong)
	}
	units, err := DecodeUTF8ToUTF16(r.r, int(byteLen))
	if err != nil {
		return nil, err
	}
	if maxUnits > 0 && len(units) > maxUnits {
		return nil, errors.WithStack(ErrStringTooLong)
	}
	return units, nil
}

// WriteUString encodes units as a UString.
func WriteUString(w *Writer, units []uint16) error {
	data, err := EncodeUTF16ToUTF8(units)
	if err != nil {
		return err
	}
	if err := w.WriteVarInt32(int32(len(data))); err != nil {
		return err
	}
	return w.emit(data)
}

// ReadJString decodes a JString: an unsigned big-endian 16-bit byte
// count (at most MaxJStringBytes) followed by UTF-8 bytes.
func ReadJString(r *Reader) ([]uint16, error) {
	byteLen, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if int(byteLen) > MaxJStringBytes {
		return nil, errors.WithStack(ErrStringTooLong)
	}
	return DecodeUTF8ToUTF16(r.r, int(byteLen))
}

// ReadJStringNameOnly decodes the JString form used for tag-tree item
// names: no additional length prefix beyond the 16-bit one already read
// by the caller. byteLen is the previously-read length.
func ReadJStringNameOnly(r io.Reader, byteLen int) ([]uint16, error) {
	return DecodeUTF8ToUTF16(r, byteLen)
}

// WriteJString encodes units as a JString.
func WriteJString(w *Writer, units []uint16) error {
	data, err := EncodeUTF16ToUTF8(units)
	if err != nil {
		return err
	}
	if len(data) > MaxJStringBytes {
		return errors.WithStack(ErrStringTooLong)
	}
	if err := w.WriteU16(uint16(len(data))); err != nil {
		return err
	}
	return w.emit(data)
}

// UTF16String is a convenience alias documenting intent at call sites
// that hold decoded UTF-16 code units (e.g. map keys in a tag compound).
type UTF16String = string

// UTF16ToGoString converts UTF-16 code units to a Go string by
// re-encoding them as UTF-8, for use as map keys and in diagnostics.
// Decoding does not reject surrogate code points, so units may contain
// lone surrogates; those are handled by the fallback below.
func UTF16ToGoString(units []uint16) string {
	b, err := EncodeUTF16ToUTF8(units)
	if err != nil {
		// Lone surrogates (high or low) fail re-encoding; fall back to a
		// lossy rune-by-rune form.
		out := make([]rune, len(units))
		for i, u := range units {
			out[i] = rune(u)
		}
		return string(out)
	}
	return string(b)
}
