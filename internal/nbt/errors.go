// Package nbt implements a reader for the game's binary tagged-tree
// format: a recursive compound/list/primitive structure terminated by a
// zero tag byte. It provides both a generic recursive reader and a SAX
// mode that binds known tag names to caller-supplied handlers and
// resolves prerequisites declared out of wire order.
package nbt

import "github.com/pkg/errors"

var (
	// ErrInvalidTagType is returned when a tag_type byte on the wire is
	// outside the 0..12 range understood by this reader.
	ErrInvalidTagType = errors.New("nbt: invalid tag type")

	// ErrMalformedTag is returned when a tag's payload violates a
	// structural invariant (e.g. a list whose element_type is 0 but
	// whose count is nonzero, or a bit-flag payload outside {0,1}).
	ErrMalformedTag = errors.New("nbt: malformed tag payload")

	// ErrPrerequisiteUnresolved is returned by SaxReadCompound when a
	// deferred action's prerequisites never became available and the
	// action provided no on_failed_resolve handler.
	ErrPrerequisiteUnresolved = errors.New("nbt: sax prerequisite unresolved")
)
