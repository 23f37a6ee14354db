package nbt

import (
	"github.com/pkg/errors"

	"github.com/aegistudio/libminecraft/internal/wire"
)

// saxNameLengthBound is the tag-name byte length past which SaxReadCompound
// gives up on dictionary lookup and treats the item as unrecognized,
// regardless of whether it would otherwise have matched.
const saxNameLengthBound = 64

// SaxAction binds one dictionary entry to caller behavior. ExpectedType
// encodes the required shape: 0..12 means the tag must carry exactly
// that wire tag_type; 13..25 means the tag must be a list whose
// element_type is ExpectedType-13 (13 itself therefore means "must be an
// empty list").
//
// The source threads this through explicit data/ud void pointers; Go
// closures make that unnecessary, so OnPresent, OnAbsent and
// OnFailedResolve close over whatever state they need directly.
type SaxAction struct {
	ExpectedType int

	// OnPresent is invoked once this action's prerequisites are
	// satisfied, with buf positioned at the payload (direct types) or at
	// the list's length field (typed lists, ExpectedType >= 13).
	OnPresent func(buf *wire.InputBuffer) error

	// Prerequisites lists the indices, into the same actions slice, of
	// actions that must already be present before this one can run.
	Prerequisites []int

	// OnAbsent, if non-nil, runs once after the whole compound has been
	// scanned for every action whose tag was never encountered at all.
	OnAbsent func()

	// OnFailedResolve, if non-nil, runs for a deferred action whose
	// prerequisites never became satisfied, with buf rewound to the
	// action's payload. If nil, an unresolved deferred action fails the
	// whole read with ErrPrerequisiteUnresolved.
	OnFailedResolve func(buf *wire.InputBuffer) error
}

// isTypedList reports whether a matches a list of a specific element type.
func (a SaxAction) isTypedList() bool { return a.ExpectedType >= 13 }

// Dictionary resolves a tag name to an index into the actions slice
// passed to SaxReadCompound, or reports NotFound.
type Dictionary func(name string) (actionIndex int, found bool)

type deferredAction struct {
	index int
	mark  wire.Mark
}

// SaxReadCompound reads a compound's items, dispatching to actions
// selected by dict. Unrecognized names, names at or past the 64-byte
// bound, and tags whose shape doesn't match their selected action's
// ExpectedType are ignored: stored into ignored (if non-nil) under their
// decoded name, or simply skipped.
//
// Dispatch for a matched, shape-correct action runs immediately if every
// index in its Prerequisites already ran; otherwise the action is
// deferred, its stream position marked, and the payload skipped so
// scanning can continue. After the terminator, deferred actions are
// retried in passes (bounded by the deferred count) as earlier actions
// resolve; any still unresolved are handed to OnFailedResolve or fail the
// read. Finally, actions whose tag was never seen at all get OnAbsent.
func SaxReadCompound(buf *wire.InputBuffer, dict Dictionary, actions []SaxAction, ignored *Compound) error {
	r := wire.NewReader(buf)

	present := make([]bool, len(actions))
	encountered := make([]bool, len(actions))
	var deferred []deferredAction

	for {
		wireType, err := r.ReadU8()
		if err != nil {
			return err
		}
		if wireType == 0 {
			break
		}
		kind, ok := KindFromWireTagType(wireType)
		if !ok {
			return errors.WithStack(ErrInvalidTagType)
		}
		nameLen, err := r.ReadU16()
		if err != nil {
			return err
		}
		if int(nameLen) >= saxNameLengthBound {
			if err := ignoreLongName(buf, r, kind, int(nameLen), ignored); err != nil {
				return err
			}
			continue
		}
		nameUnits, err := wire.DecodeUTF8ToUTF16(buf, int(nameLen))
		if err != nil {
			return err
		}
		name := wire.UTF16ToGoString(nameUnits)

		actionIdx, found := dict(name)
		if !found || actionIdx < 0 || actionIdx >= len(actions) {
			if err := storeOrSkip(buf, r, kind, name, ignored); err != nil {
				return err
			}
			continue
		}
		action := actions[actionIdx]
		payloadMark := buf.Mark()

		matched, elemWire, err := matchShape(buf, r, kind, action)
		if err != nil {
			return err
		}
		if !matched {
			payloadMark.Reset()
			if err := storeOrSkip(buf, r, kind, name, ignored); err != nil {
				return err
			}
			continue
		}

		encountered[actionIdx] = true
		dispatchMark := buf.Mark()
		if prerequisitesSatisfied(action.Prerequisites, present) {
			if err := action.OnPresent(buf); err != nil {
				return err
			}
			present[actionIdx] = true
			continue
		}

		if action.isTypedList() {
			if err := skipListBody(buf, elemWire); err != nil {
				return err
			}
		} else if err := SkipPayload(buf, kind); err != nil {
			return err
		}
		deferred = append(deferred, deferredAction{index: actionIdx, mark: dispatchMark})
	}
	endMark := buf.Mark()

	pending := deferred
	for pass := 0; pass < len(deferred) && len(pending) > 0; pass++ {
		var stillPending []deferredAction
		for _, d := range pending {
			action := actions[d.index]
			if !prerequisitesSatisfied(action.Prerequisites, present) {
				stillPending = append(stillPending, d)
				continue
			}
			d.mark.Reset()
			if err := action.OnPresent(buf); err != nil {
				return err
			}
			present[d.index] = true
		}
		pending = stillPending
	}
	for _, d := range pending {
		action := actions[d.index]
		if action.OnFailedResolve == nil {
			return errors.Wrapf(ErrPrerequisiteUnresolved, "action %d", d.index)
		}
		d.mark.Reset()
		if err := action.OnFailedResolve(buf); err != nil {
			return err
		}
		present[d.index] = true
	}
	for i, action := range actions {
		if !encountered[i] && action.OnAbsent != nil {
			action.OnAbsent()
		}
	}
	endMark.Reset()
	return nil
}

func prerequisitesSatisfied(prereqs []int, present []bool) bool {
	for _, p := range prereqs {
		if p < 0 || p >= len(present) || !present[p] {
			return false
		}
	}
	return true
}

// matchShape checks whether kind (already read from the wire) satisfies
// action's ExpectedType, consuming the list element-type byte (and, for
// an empty list, peeking then un-reading its count) as needed to decide.
// On success buf is left at the payload (direct types) or at the list's
// length field (typed lists); elemWire is the list's element_type byte
// when action is a typed list.
func matchShape(buf *wire.InputBuffer, r *wire.Reader, kind Kind, action SaxAction) (matched bool, elemWire uint8, err error) {
	if !action.isTypedList() {
		expectedKind, ok := KindFromWireTagType(uint8(action.ExpectedType))
		return ok && kind == expectedKind, 0, nil
	}
	if kind != KindList {
		return false, 0, nil
	}
	expectedElem := uint8(action.ExpectedType - 13)
	elemWire, err = r.ReadU8()
	if err != nil {
		return false, 0, err
	}
	if elemWire == 0 {
		countMark := buf.Mark()
		count, err := r.ReadS32()
		if err != nil {
			return false, 0, err
		}
		if count != 0 {
			return false, 0, errors.WithStack(ErrMalformedTag)
		}
		countMark.Reset()
		return true, 0, nil
	}
	if elemWire != expectedElem {
		return false, 0, nil
	}
	if _, ok := KindFromWireTagType(elemWire); !ok {
		return false, 0, errors.WithStack(ErrInvalidTagType)
	}
	return true, elemWire, nil
}

func skipListBody(buf *wire.InputBuffer, elemWire uint8) error {
	r := wire.NewReader(buf)
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
}

func storeOrSkip(buf *wire.InputBuffer, r *wire.Reader, kind Kind, name string, ignored *Compound) error {
	if ignored == nil {
		return SkipPayload(buf, kind)
	}
	payload, err := readPayload(buf, r, kind)
	if err != nil {
		return err
	}
	ignored.Set(name, payload)
	return nil
}

func ignoreLongName(buf *wire.InputBuffer, r *wire.Reader, kind Kind, nameLen int, ignored *Compound) error {
	if ignored == nil {
		if err := buf.Skip(nameLen); err != nil {
			return err
		}
		return SkipPayload(buf, kind)
	}
	nameUnits, err := wire.DecodeUTF8ToUTF16(buf, nameLen)
	if err != nil {
		return err
	}
	payload, err := readPayload(buf, r, kind)
	if err != nil {
		return err
	}
	ignored.Set(wire.UTF16ToGoString(nameUnits), payload)
	return nil
}
