package wire

import (
	"io"

	"github.com/pkg/errors"
)

// DecodeUTF8ToUTF16 reads exactly byteLength bytes of UTF-8 from r and
// returns the equivalent UTF-16 code-unit sequence. ASCII bytes, and
// 2- or 3-byte UTF-8 sequences, each decode to a single code unit; 4-byte
// sequences decode to a surrogate pair. It fails with ErrMalformedUtf8 if
// a leading byte has no valid prefix, a continuation byte is missing or
// ill-formed, or the bytes consumed do not exactly equal byteLength.
func DecodeUTF8ToUTF16(r io.Reader, byteLength int) ([]uint16, error) {
	units := make([]uint16, 0, byteLength)
	var lead [1]byte
	var cont [3]byte

	consumed := 0
	for consumed < byteLength {
		if _, err := io.ReadFull(r, lead[:]); err != nil {
			return nil, err
		}
		consumed++
		c0 := lead[0]

		var followed int
		var codepoint rune
		switch {
		case c0 < 0x80:
			units = append(units, uint16(c0))
			continue
		case c0 >= 0xc0 && c0 < 0xe0:
			followed = 1
			codepoint = rune(c0 & 0x1f)
		case c0 >= 0xe0 && c0 < 0xf0:
			followed = 2
			codepoint = rune(c0 & 0x0f)
		case c0 >= 0xf0 && c0 < 0xf8:
			followed = 3
			codepoint = rune(c0 & 0x07)
		default:
			return nil, errors.WithStack(ErrMalformedUtf8)
		}

		if consumed+followed > byteLength {
			return nil, errors.WithStack(ErrMalformedUtf8)
		}
		if _, err := io.ReadFull(r, cont[:followed]); err != nil {
			return nil, err
		}
		consumed += followed
		for i := 0; i < followed; i++ {
			b := cont[i]
			if b&0xc0 != 0x80 {
				return nil, errors.WithStack(ErrMalformedUtf8)
			}
			codepoint = (codepoint << 6) | rune(b&0x3f)
		}

		if followed < 3 {
			units = append(units, uint16(codepoint))
		} else {
			codepoint -= 0x10000
			units = append(units, uint16(0xd800|(codepoint>>10)&0x3ff))
			units = append(units, uint16(0xdc00|codepoint&0x3ff))
		}
	}
	if consumed != byteLength {
		return nil, errors.WithStack(ErrMalformedUtf8)
	}
	return units, nil
}

// EncodeUTF16ToUTF8 converts a UTF-16 code-unit sequence to UTF-8 bytes.
// A high surrogate not immediately followed by a matching low surrogate
// fails with ErrMalformedUtf16.
func EncodeUTF16ToUTF8(units []uint16) ([]byte, error) {
	out := make([]byte, 0, len(units)*3)
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, byte(0xc0|(u>>6)), byte(0x80|(u&0x3f)))
		case u >= 0xd800 && u <= 0xdbff:
			if i+1 >= len(units) || units[i+1] < 0xdc00 || units[i+1] > 0xdfff {
				return nil, errors.WithStack(ErrMalformedUtf16)
			}
			low := units[i+1]
			i++
			cp := 0x10000 + (rune(u)-0xd800)<<10 + (rune(low) - 0xdc00)
			out = append(out,
				byte(0xf0|(cp>>18)),
				byte(0x80|((cp>>12)&0x3f)),
				byte(0x80|((cp>>6)&0x3f)),
				byte(0x80|(cp&0x3f)),
			)
		case u >= 0xdc00 && u <= 0xdfff:
			return nil, errors.WithStack(ErrMalformedUtf16)
		default:
			out = append(out,
				byte(0xe0|(u>>12)),
				byte(0x80|((u>>6)&0x3f)),
				byte(0x80|(u&0x3f)),
			)
		}
	}
	return out, nil
}
