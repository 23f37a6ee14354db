package nbt

import (
	"github.com/pkg/errors"

	"github.com/aegistudio/libminecraft/internal/wire"
)

// ReadItem reads one (tag_type, name, payload) item from buf. A wire
// tag_type of 0 reports terminator=true and no name or payload; callers
// driving a compound loop on ReadItem until terminator implement the
// compound read themselves, while ReadCompound does this internally.
func ReadItem(buf *wire.InputBuffer) (name string, item Item, terminator bool, err error) {
	r := wire.NewReader(buf)
	wireType, err := r.ReadU8()
	if err != nil {
		return "", Item{}, false, err
	}
	if wireType == 0 {
		return "", Item{}, true, nil
	}
	kind, ok := KindFromWireTagType(wireType)
	if !ok {
		return "", Item{}, false, errors.WithStack(ErrInvalidTagType)
	}
	nameUnits, err := wire.ReadJString(r)
	if err != nil {
		return "", Item{}, false, err
	}
	payload, err := readPayload(buf, r, kind)
	if err != nil {
		return "", Item{}, false, err
	}
	return wire.UTF16ToGoString(nameUnits), payload, false, nil
}

// ReadCompound reads a full compound payload (items until the
// terminator) whose own tag_type and name have already been consumed by
// the caller. ReadItem, by contrast, reads a whole item, payload included.
func ReadCompound(buf *wire.InputBuffer) (*Compound, error) {
	r := wire.NewReader(buf)
	item, err := readCompoundPayload(buf, r)
	if err != nil {
		return nil, err
	}
	c, _ := item.Compound()
	return c, nil
}

func readPayload(buf *wire.InputBuffer, r *wire.Reader, kind Kind) (Item, error) {
	switch kind {
	case KindByte:
		v, err := r.ReadS8()
		return Byte(v), err
	case KindShort:
		v, err := r.ReadS16()
		return Short(v), err
	case KindInt:
		v, err := r.ReadS32()
		return Int(v), err
	case KindLong:
		v, err := r.ReadS64()
		return Long(v), err
	case KindFloat:
		v, err := r.ReadF32()
		return Float(v), err
	case KindDouble:
		v, err := r.ReadF64()
		return Double(v), err
	case KindByteArray:
		n, err := r.ReadS32()
		if err != nil {
			return Item{}, err
		}
		if n < 0 {
			return Item{}, errors.WithStack(ErrMalformedTag)
		}
		arr := make([]int8, n)
		for i := range arr {
			v, err := r.ReadS8()
			if err != nil {
				return Item{}, err
			}
			arr[i] = v
		}
		return ByteArray(arr), nil
	case KindString:
		units, err := wire.ReadJString(r)
		return StringVal(units), err
	case KindList:
		return readListPayload(buf, r)
	case KindCompound:
		return readCompoundPayload(buf, r)
	case KindIntArray:
		n, err := r.ReadS32()
		if err != nil {
			return Item{}, err
		}
		if n < 0 {
			return Item{}, errors.WithStack(ErrMalformedTag)
		}
		arr := make([]int32, n)
		for i := range arr {
			v, err := r.ReadS32()
			if err != nil {
				return Item{}, err
			}
			arr[i] = v
		}
		return IntArray(arr), nil
	case KindLongArray:
		n, err := r.ReadS32()
		if err != nil {
			return Item{}, err
		}
		if n < 0 {
			return Item{}, errors.WithStack(ErrMalformedTag)
		}
		arr := make([]int64, n)
		for i := range arr {
			v, err := r.ReadS64()
			if err != nil {
				return Item{}, err
			}
			arr[i] = v
		}
		return LongArray(arr), nil
	default:
		return Item{}, errors.WithStack(ErrInvalidTagType)
	}
}

func readCompoundPayload(buf *wire.InputBuffer, r *wire.Reader) (Item, error) {
	c := NewCompound()
	for {
		wireType, err := r.ReadU8()
		if err != nil {
			return Item{}, err
		}
		if wireType == 0 {
			break
		}
		kind, ok := KindFromWireTagType(wireType)
		if !ok {
			return Item{}, errors.WithStack(ErrInvalidTagType)
		}
		nameUnits, err := wire.ReadJString(r)
		if err != nil {
			return Item{}, err
		}
		payload, err := readPayload(buf, r, kind)
		if err != nil {
			return Item{}, err
		}
		c.Set(wire.UTF16ToGoString(nameUnits), payload)
	}
	return CompoundVal(c), nil
}

func readListPayload(buf *wire.InputBuffer, r *wire.Reader) (Item, error) {
	elemWire, err := r.ReadU8()
	if err != nil {
		return Item{}, err
	}
	count, err := r.ReadS32()
	if err != nil {
		return Item{}, err
	}
	if elemWire == 0 {
		if count != 0 {
			return Item{}, errors.WithStack(ErrMalformedTag)
		}
		return ListVal(&List{}), nil
	}
	kind, ok := KindFromWireTagType(elemWire)
	if !ok {
		return Item{}, errors.WithStack(ErrInvalidTagType)
	}
	if count < 0 {
		return Item{}, errors.WithStack(ErrMalformedTag)
	}
	items := make([]Item, 0, count)
	for i := int32(0); i < count; i++ {
		it, err := readPayload(buf, r, kind)
		if err != nil {
			return Item{}, err
		}
		items = append(items, it)
	}
	return ListVal(&List{ElementWire: elemWire, Items: items}), nil
}

// fixedPayloadSize reports the wire size of a primitive, fixed-width
// kind's payload; ok is false for kinds whose payload is variable-length
// (arrays, strings, lists, compounds).
func fixedPayloadSize(kind Kind) (size int, ok bool) {
	switch kind {
	case KindByte:
		return 1, true
	case KindShort:
		return 2, true
	case KindInt:
		return 4, true
	case KindLong:
		return 8, true
	case KindFloat:
		return 4, true
	case KindDouble:
		return 8, true
	default:
		return 0, false
	}
}

// SkipPayload advances buf exactly past one payload of the given kind,
// without materializing it into an Item. The caller must already have
// consumed the tag_type (and, for compound items, the name).
func SkipPayload(buf *wire.InputBuffer, kind Kind) error {
	r := wire.NewReader(buf)
	if size, ok := fixedPayloadSize(kind); ok {
		return buf.Skip(size)
	}
	switch kind {
	case KindByteArray:
		n, err := r.ReadS32()
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.WithStack(ErrMalformedTag)
		}
		return buf.Skip(int(n))
	case KindIntArray:
		n, err := r.ReadS32()
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.WithStack(ErrMalformedTag)
		}
		return buf.Skip(int(n) * 4)
	case KindLongArray:
		n, err := r.ReadS32()
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.WithStack(ErrMalformedTag)
		}
		return buf.Skip(int(n) * 8)
	case KindString:
		n, err := r.ReadU16()
		if err != nil {
			return err
		}
		return buf.Skip(int(n))
	case KindList:
		elemWire, err := r.ReadU8()
		if err != nil {
			return err
		}
		count, err := r.ReadS32()
		if err != nil {
			return err
		}
		if elemWire == 0 {
			if count != 0 {
				return errors.WithStack(ErrMalformedTag)
			}
			return nil
		}
		elemKind, ok := KindFromWireTagType(elemWire)
		if !ok {
			return errors.WithStack(ErrInvalidTagType)
		}
		if count < 0 {
			return errors.WithStack(ErrMalformedTag)
		}
		if size, ok := fixedPayloadSize(elemKind); ok {
			return buf.Skip(int(count) * size)
		}
		for i := int32(0); i < count; i++ {
			if err := SkipPayload(buf, elemKind); err != nil {
				return err
			}
		}
		return nil
	case KindCompound:
		for {
			wireType, err := r.ReadU8()
			if err != nil {
				return err
			}
			if wireType == 0 {
				return nil
			}
			kind, ok := KindFromWireTagType(wireType)
			if !ok {
				return errors.WithStack(ErrInvalidTagType)
			}
			nameLen, err := r.ReadU16()
			if err != nil {
				return err
			}
			if err := buf.Skip(int(nameLen)); err != nil {
				return err
			}
			if err := SkipPayload(buf, kind); err != nil {
				return err
			}
		}
	default:
		return errors.WithStack(ErrInvalidTagType)
	}
}
