package nbt

import (
	"github.com/pkg/errors"

	"github.com/aegistudio/libminecraft/internal/wire"
)

// PrimitiveFieldAction binds a direct-typed tag to dest, decoding it with
// the ordinary recursive reader. Use this for scalar and array kinds;
// list kinds need VectorFieldAction instead, since a list's element type
// must be checked against the dictionary entry rather than inferred.
func PrimitiveFieldAction(kind Kind, dest *Item, prerequisites ...int) SaxAction {
	return SaxAction{
		ExpectedType:  int(kind.WireTagType()),
		Prerequisites: prerequisites,
		OnPresent: func(buf *wire.InputBuffer) error {
			r := wire.NewReader(buf)
			item, err := readPayload(buf, r, kind)
			if err != nil {
				return err
			}
			*dest = item
			return nil
		},
	}
}

// VectorFieldAction binds a tag that must be a list of elemWire elements,
// decoding one element at a time with decodeElem. buf is positioned at
// each element's payload in turn; decodeElem must consume exactly one.
func VectorFieldAction(elemWire uint8, decodeElem func(buf *wire.InputBuffer) error, prerequisites ...int) SaxAction {
	return SaxAction{
		ExpectedType:  13 + int(elemWire),
		Prerequisites: prerequisites,
		OnPresent: func(buf *wire.InputBuffer) error {
			r := wire.NewReader(buf)
			count, err := r.ReadS32()
			if err != nil {
				return err
			}
			if count < 0 {
				return errors.WithStack(ErrMalformedTag)
			}
			for i := int32(0); i < count; i++ {
				if err := decodeElem(buf); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// BitFlagAction binds a single-byte tag whose payload must be 0 or 1,
// clearing or setting mask in *dest accordingly. Any other byte value is
// ErrMalformedTag.
func BitFlagAction(dest *uint32, mask uint32, prerequisites ...int) SaxAction {
	return SaxAction{
		ExpectedType:  int(KindByte.WireTagType()),
		Prerequisites: prerequisites,
		OnPresent: func(buf *wire.InputBuffer) error {
			r := wire.NewReader(buf)
			v, err := r.ReadS8()
			if err != nil {
				return err
			}
			switch v {
			case 0:
				*dest &^= mask
			case 1:
				*dest |= mask
			default:
				return errors.WithStack(ErrMalformedTag)
			}
			return nil
		},
	}
}
