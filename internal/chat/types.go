package chat

// ContentKind identifies which chat trait a Compound's content holds.
type ContentKind uint8

const (
	ContentNone ContentKind = iota
	ContentText
	ContentTranslate
	ContentKeybind
	ContentScore
)

// Content is the chat trait sum type: exactly one of the traits below is
// meaningful, selected by Kind. Translate's With and Score's two fields
// are only ever populated alongside their matching Kind.
type Content struct {
	Kind ContentKind

	Text string

	TranslateKey string
	With         []string

	KeybindKey string

	ScoreName      string
	ScoreObjective string
}

// ClickKind identifies a chat compound's click event variant.
type ClickKind uint8

const (
	ClickNone ClickKind = iota
	ClickOpenURL
	ClickRunCommand
	ClickSuggestCommand
	ClickChangePage
)

// ClickEvent is the click-event sum type.
type ClickEvent struct {
	Kind ClickKind

	URL     string
	Command string
	PageNo  int64
}

// HoverKind identifies a chat compound's hover event variant.
type HoverKind uint8

const (
	HoverNone HoverKind = iota
	HoverShowText
	HoverShowItem
	HoverShowEntity
	HoverShowAchievement
)

// HoverEvent is the hover-event sum type.
type HoverEvent struct {
	Kind HoverKind

	Text        string
	Item        string
	Entity      string
	Achievement string
}

// Decoration is a tri-state flag: a compound that never mentions a
// decoration key leaves it Inherit, letting a renderer fall back to
// whatever the enclosing compound resolved it to.
type Decoration uint8

const (
	DecorationInherit Decoration = iota
	DecorationEnable
	DecorationDisable
)

// Compound is one node of a chat-compound tree. Decorations and Color
// default to their unset zero value; Extra siblings inherit the tri-states
// and color verbatim via InheritStyle before the reader applies
// whatever that sibling's own JSON object specifies.
type Compound struct {
	Bold          Decoration
	Italic        Decoration
	Underlined    Decoration
	Strikethrough Decoration
	Obfuscated    Decoration

	HasColor bool
	Color    Color

	Insertion *string

	Content    Content
	ClickEvent ClickEvent
	HoverEvent HoverEvent

	Extra []*Compound
}

// InheritStyle copies parent's decoration tri-states, color and insertion
// into c, as the source's McDtChatCompound::inheritStyle does for every
// entry added to Extra before that entry's own object is parsed. A parent
// tri-state left at Inherit stays Inherit in the child, so the unresolved
// state propagates down the tree until some ancestor sets it explicitly.
func (c *Compound) InheritStyle(parent *Compound) {
	c.Bold = parent.Bold
	c.Italic = parent.Italic
	c.Underlined = parent.Underlined
	c.Strikethrough = parent.Strikethrough
	c.Obfuscated = parent.Obfuscated
	c.HasColor = parent.HasColor
	c.Color = parent.Color
	c.Insertion = parent.Insertion
}

// decorationOf turns a raw JSON bool into the tri-state it sets.
func decorationOf(b bool) Decoration {
	if b {
		return DecorationEnable
	}
	return DecorationDisable
}
