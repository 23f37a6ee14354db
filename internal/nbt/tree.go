package nbt

// Compound is an ordered-on-the-wire, unordered-in-memory stream of
// (tag_type, name, payload) items terminated by a zero tag byte. Items
// are stored by name; a name repeated on the wire replaces the earlier
// value, matching the source's insertion semantics.
//
// Names are stored as Go strings obtained by re-encoding the wire's
// UTF-16 name as UTF-8: item names are validated JStrings, so this
// round-trips exactly and lets callers use ordinary map indexing instead
// of carrying UTF-16 code units through every lookup.
type Compound struct {
	Entries map[string]Item
}

// NewCompound returns an empty compound.
func NewCompound() *Compound { return &Compound{Entries: make(map[string]Item)} }

// Set inserts or replaces the entry named name.
func (c *Compound) Set(name string, item Item) { c.Entries[name] = item }

// Get looks up an entry by name.
func (c *Compound) Get(name string) (Item, bool) { it, ok := c.Entries[name]; return it, ok }

// List is a homogeneous, length-prefixed sequence of tag payloads.
// ElementWire is the raw wire element_type byte (1..12, or 0 for an
// empty list with no declared element kind); Items holds one entry of
// that kind per element counted on the wire, or is empty when
// ElementWire is 0.
type List struct {
	ElementWire uint8
	Items       []Item
}

// ElementKind returns the decoded element Kind and whether the list has
// one (false for an empty, kindless list).
func (l *List) ElementKind() (Kind, bool) {
	if l.ElementWire == 0 {
		return 0, false
	}
	return KindFromWireTagType(l.ElementWire)
}
