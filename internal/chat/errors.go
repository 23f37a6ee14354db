// Package chat reads the game's chat-compound JSON format: a rich-text
// tree of styled components (decorations, color, content variants, click
// and hover events) where each sibling in extra inherits its parent's
// style before the parser applies whatever it explicitly overrides.
package chat

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedChat is returned for a chat document that violates the
	// format's structure in a way none of the more specific kinds below
	// name: a root value that isn't an object, an event object with no
	// "action", or an event action this reader doesn't recognize at all.
	ErrMalformedChat = errors.New("chat: malformed chat compound")

	// ErrTooLarge is returned when a document exceeds the 32767-byte
	// cap protocol-embedded chat messages are held to.
	ErrTooLarge = errors.New("chat: document exceeds 32767 bytes")

	// ErrAmbiguousTrait is returned when a compound's content variant is
	// set a second time to a different trait (e.g. both "text" and
	// "score" on the same compound).
	ErrAmbiguousTrait = errors.New("chat: ambiguous chat trait")

	// ErrUnknownKey is returned for an object key this reader does not
	// recognize in the current context; every unrecognized key is an
	// error.
	ErrUnknownKey = errors.New("chat: unrecognized key")

	// ErrUnexpectedValueType is returned when a known key's value has
	// the wrong JSON type (e.g. a number where "text" expects a string).
	ErrUnexpectedValueType = errors.New("chat: unexpected value type")

	// ErrInvalidColor is returned for a "color" value not found in the
	// keyword table.
	ErrInvalidColor = errors.New("chat: invalid color name")

	// ErrInvalidKeybind is returned for a "keybind" value not found in
	// the keyword table.
	ErrInvalidKeybind = errors.New("chat: invalid keybind name")

	// ErrDuplicateAction is returned when a click or hover event object
	// sets "action" more than once.
	ErrDuplicateAction = errors.New("chat: duplicate action key")

	// ErrDuplicateValue is returned when a click or hover event object
	// sets "value" more than once.
	ErrDuplicateValue = errors.New("chat: duplicate value key")

	// ErrInvalidValueType is returned when a click or hover event's
	// "value" doesn't match what its "action" requires (e.g.
	// "change_page" without an integer value).
	ErrInvalidValueType = errors.New("chat: value type does not match action")
)

// ChatParseError reports a structural failure from the underlying
// pull-parser, with the byte offset it occurred at when the parser
// binding exposes one. json-iterator's low-level Iterator does not
// surface stream position through its public API, so Offset is -1 for
// errors it reports; Reason always carries the parser's own message.
type ChatParseError struct {
	Offset int
	Reason string
}

func (e *ChatParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("chat: parse error: %s", e.Reason)
	}
	return fmt.Sprintf("chat: parse error at offset %d: %s", e.Offset, e.Reason)
}
