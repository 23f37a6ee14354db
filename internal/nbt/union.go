package nbt

// Kind identifies which alternative of the tag payload sum type an Item
// currently holds. Values are numbered 0..11, one less than the tag_type
// byte on the wire (wire 0 is reserved for the compound terminator and
// is never represented as a Kind).
type Kind uint8

const (
	KindByte Kind = iota
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindByteArray
	KindString
	KindList
	KindCompound
	KindIntArray
	KindLongArray

	numKinds = int(KindLongArray) + 1
)

// WireTagType is the on-the-wire byte for k (1-based; 0 is the
// terminator and has no Kind).
func (k Kind) WireTagType() uint8 { return uint8(k) + 1 }

// KindFromWireTagType converts a wire tag_type byte (1..12) to a Kind.
// ok is false for 0 (the terminator) or any value outside 1..12.
func KindFromWireTagType(wire uint8) (Kind, bool) {
	if wire < 1 || int(wire) > numKinds {
		return 0, false
	}
	return Kind(wire - 1), true
}

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindByteArray:
		return "byte_array"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindCompound:
		return "compound"
	case KindIntArray:
		return "int_array"
	case KindLongArray:
		return "long_array"
	default:
		return "unknown"
	}
}

// Item is the tagged-union runtime for a tag payload: exactly one
// alternative out of the candidate types is live at a time, identified
// by kind. Constructing an Item with New replaces whatever alternative
// it previously held, mirroring the source's construct/destruct-by-
// ordinal dispatch; Go's garbage collector stands in for the explicit
// destruct step.
type Item struct {
	kind    Kind
	payload interface{}
}

// New constructs an Item holding payload under kind. The caller is
// responsible for payload's runtime type matching kind; the typed
// accessors below (Byte, Short, ...) are the intended construction and
// inspection surface.
func New(kind Kind, payload interface{}) Item { return Item{kind: kind, payload: payload} }

// Kind reports the live alternative.
func (it Item) Kind() Kind { return it.kind }

// Is reports whether it currently holds kind.
func (it Item) Is(kind Kind) bool { return it.kind == kind }

// As returns the payload if it holds kind, else nil, false. This is the
// Go analogue of the source's as<T>() accessor, routed by ordinal rather
// than by static type.
func (it Item) As(kind Kind) (interface{}, bool) {
	if it.kind != kind {
		return nil, false
	}
	return it.payload, true
}

// Assign replaces it's alternative with a new kind/payload pair. In the
// source this destructs the current slot's value and constructs the new
// one when kinds differ, or uses the type's own assignment when kinds
// match; in Go both cases reduce to a plain struct assignment.
func (it *Item) Assign(kind Kind, payload interface{}) { it.kind, it.payload = kind, payload }

func Byte(v int8) Item       { return New(KindByte, v) }
func Short(v int16) Item     { return New(KindShort, v) }
func Int(v int32) Item       { return New(KindInt, v) }
func Long(v int64) Item      { return New(KindLong, v) }
func Float(v float32) Item   { return New(KindFloat, v) }
func Double(v float64) Item  { return New(KindDouble, v) }
func ByteArray(v []int8) Item { return New(KindByteArray, v) }
func StringVal(v []uint16) Item { return New(KindString, v) }
func ListVal(v *List) Item      { return New(KindList, v) }
func CompoundVal(v *Compound) Item { return New(KindCompound, v) }
func IntArray(v []int32) Item   { return New(KindIntArray, v) }
func LongArray(v []int64) Item  { return New(KindLongArray, v) }

func (it Item) Byte() (int8, bool)          { v, ok := it.As(KindByte); if !ok { return 0, false }; return v.(int8), true }
func (it Item) Short() (int16, bool)        { v, ok := it.As(KindShort); if !ok { return 0, false }; return v.(int16), true }
func (it Item) Int() (int32, bool)          { v, ok := it.As(KindInt); if !ok { return 0, false }; return v.(int32), true }
func (it Item) Long() (int64, bool)         { v, ok := it.As(KindLong); if !ok { return 0, false }; return v.(int64), true }
func (it Item) Float() (float32, bool)      { v, ok := it.As(KindFloat); if !ok { return 0, false }; return v.(float32), true }
func (it Item) Double() (float64, bool)     { v, ok := it.As(KindDouble); if !ok { return 0, false }; return v.(float64), true }
func (it Item) ByteArrayVal() ([]int8, bool) { v, ok := it.As(KindByteArray); if !ok { return nil, false }; return v.([]int8), true }
func (it Item) StringUnits() ([]uint16, bool) { v, ok := it.As(KindString); if !ok { return nil, false }; return v.([]uint16), true }
func (it Item) List() (*List, bool)         { v, ok := it.As(KindList); if !ok { return nil, false }; return v.(*List), true }
func (it Item) Compound() (*Compound, bool) { v, ok := it.As(KindCompound); if !ok { return nil, false }; return v.(*Compound), true }
func (it Item) IntArrayVal() ([]int32, bool) { v, ok := it.As(KindIntArray); if !ok { return nil, false }; return v.([]int32), true }
func (it Item) LongArrayVal() ([]int64, bool) { v, ok := it.As(KindLongArray); if !ok { return nil, false }; return v.([]int64), true }
