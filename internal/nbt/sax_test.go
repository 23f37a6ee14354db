package nbt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aegistudio/libminecraft/internal/wire"
)

func TestSaxReadCompoundDeferredPrerequisite(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	// "b" is written before its prerequisite "a" on the wire, forcing a
	// deferred pass.
	writeItemHeader(t, w, KindInt, "b")
	must(t, w.WriteS32(99))
	writeItemHeader(t, w, KindInt, "a")
	must(t, w.WriteS32(1))
	must(t, w.WriteU8(0))
	buf.WriteByte(0xff) // sentinel byte past the compound

	var itemA, itemB Item
	var cAbsent bool

	actions := []SaxAction{
		PrimitiveFieldAction(KindInt, &itemA),
		PrimitiveFieldAction(KindInt, &itemB, 0),
		{
			ExpectedType: int(KindInt.WireTagType()),
			OnAbsent:     func() { cAbsent = true },
		},
	}
	dict := func(name string) (int, bool) {
		switch name {
		case "a":
			return 0, true
		case "b":
			return 1, true
		case "c":
			return 2, true
		default:
			return 0, false
		}
	}

	in := wire.NewInputBuffer(buf.Bytes())
	if err := SaxReadCompound(in, dict, actions, nil); err != nil {
		t.Fatal(err)
	}

	if v, ok := itemA.Int(); !ok || v != 1 {
		t.Fatalf("itemA = %v, %v", v, ok)
	}
	if v, ok := itemB.Int(); !ok || v != 99 {
		t.Fatalf("itemB = %v, %v", v, ok)
	}
	if !cAbsent {
		t.Fatalf("expected OnAbsent to run for never-encountered action")
	}

	sentinel := make([]byte, 1)
	if _, err := in.Read(sentinel); err != nil || sentinel[0] != 0xff {
		t.Fatalf("expected exactly one compound consumed, next byte = %v, %v", sentinel, err)
	}
}

func TestSaxReadCompoundUnresolvedPrerequisiteFails(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	writeItemHeader(t, w, KindInt, "b")
	must(t, w.WriteS32(1))
	must(t, w.WriteU8(0))

	actions := []SaxAction{
		PrimitiveFieldAction(KindInt, new(Item)), // "a", never present
		PrimitiveFieldAction(KindInt, new(Item), 0),
	}
	dict := func(name string) (int, bool) {
		switch name {
		case "a":
			return 0, true
		case "b":
			return 1, true
		default:
			return 0, false
		}
	}

	in := wire.NewInputBuffer(buf.Bytes())
	err := SaxReadCompound(in, dict, actions, nil)
	if !errors.Is(err, ErrPrerequisiteUnresolved) {
		t.Fatalf("expected ErrPrerequisiteUnresolved, got %v", err)
	}
}

func TestSaxReadCompoundOnFailedResolve(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	writeItemHeader(t, w, KindInt, "b")
	must(t, w.WriteS32(7))
	must(t, w.WriteU8(0))

	var resolvedWith int32 = -1
	actions := []SaxAction{
		PrimitiveFieldAction(KindInt, new(Item)),
		{
			ExpectedType:  int(KindInt.WireTagType()),
			Prerequisites: []int{0},
			OnPresent: func(buf *wire.InputBuffer) error {
				t.Fatalf("OnPresent should not run when prerequisite never resolves")
				return nil
			},
			OnFailedResolve: func(buf *wire.InputBuffer) error {
				r := wire.NewReader(buf)
				v, err := r.ReadS32()
				resolvedWith = v
				return err
			},
		},
	}
	dict := func(name string) (int, bool) {
		switch name {
		case "a":
			return 0, true
		case "b":
			return 1, true
		default:
			return 0, false
		}
	}

	in := wire.NewInputBuffer(buf.Bytes())
	if err := SaxReadCompound(in, dict, actions, nil); err != nil {
		t.Fatal(err)
	}
	if resolvedWith != 7 {
		t.Fatalf("OnFailedResolve saw %d, want 7", resolvedWith)
	}
}

func TestSaxReadCompoundIgnoresUnknownAndMismatched(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	writeItemHeader(t, w, KindString, "extra")
	must(t, wire.WriteJString(w, []uint16{'z'}))
	writeItemHeader(t, w, KindString, "typed") // dictionary expects Int here
	must(t, wire.WriteJString(w, []uint16{'z'}))
	writeItemHeader(t, w, KindInt, "typed2")
	must(t, w.WriteS32(5))
	must(t, w.WriteU8(0))

	var dest Item
	actions := []SaxAction{
		PrimitiveFieldAction(KindInt, &dest),
	}
	dict := func(name string) (int, bool) {
		switch name {
		case "typed", "typed2":
			return 0, true
		default:
			return 0, false
		}
	}

	ignored := NewCompound()
	in := wire.NewInputBuffer(buf.Bytes())
	if err := SaxReadCompound(in, dict, actions, ignored); err != nil {
		t.Fatal(err)
	}
	if v, ok := dest.Int(); !ok || v != 5 {
		t.Fatalf("dest = %v, %v", v, ok)
	}
	if _, ok := ignored.Get("extra"); !ok {
		t.Fatalf("expected unrecognized name stored in ignored bucket")
	}
	if _, ok := ignored.Get("typed"); !ok {
		t.Fatalf("expected type-mismatched tag stored in ignored bucket")
	}
}

func TestVectorFieldAction(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	writeItemHeader(t, w, KindList, "positions")
	must(t, w.WriteU8(KindInt.WireTagType()))
	must(t, w.WriteS32(2))
	must(t, w.WriteS32(10))
	must(t, w.WriteS32(20))
	must(t, w.WriteU8(0))

	var values []int32
	actions := []SaxAction{
		VectorFieldAction(KindInt.WireTagType(), func(buf *wire.InputBuffer) error {
			r := wire.NewReader(buf)
			v, err := r.ReadS32()
			if err != nil {
				return err
			}
			values = append(values, v)
			return nil
		}),
	}
	dict := func(name string) (int, bool) {
		if name == "positions" {
			return 0, true
		}
		return 0, false
	}

	in := wire.NewInputBuffer(buf.Bytes())
	if err := SaxReadCompound(in, dict, actions, nil); err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 || values[0] != 10 || values[1] != 20 {
		t.Fatalf("values = %v", values)
	}
}

func TestBitFlagAction(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	writeItemHeader(t, w, KindByte, "flying")
	must(t, w.WriteS8(1))
	must(t, w.WriteU8(0))

	var flags uint32
	actions := []SaxAction{
		BitFlagAction(&flags, 0x02),
	}
	dict := func(name string) (int, bool) {
		if name == "flying" {
			return 0, true
		}
		return 0, false
	}

	in := wire.NewInputBuffer(buf.Bytes())
	if err := SaxReadCompound(in, dict, actions, nil); err != nil {
		t.Fatal(err)
	}
	if flags != 0x02 {
		t.Fatalf("flags = %#x, want 0x02", flags)
	}
}
