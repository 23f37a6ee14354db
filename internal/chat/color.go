package chat

// Color is one of the sixteen named chat colors, or Reset. Reset may be
// assigned to a compound's Color like any other value, but forces
// whatever is rendering the chat back to its context's default color.
type Color struct {
	Name        string
	ControlChar byte
	FG, BG      [3]byte
}

// Reset is the special color that clears back to context default.
var Reset = Color{Name: "reset", ControlChar: 'r'}

// Colors holds the sixteen ordinary chat colors, in their traditional
// control-code order.
var Colors = [16]Color{
	{Name: "black", ControlChar: '0', FG: [3]byte{0, 0, 0}, BG: [3]byte{0, 0, 0}},
	{Name: "dark_blue", ControlChar: '1', FG: [3]byte{0, 0, 170}, BG: [3]byte{0, 0, 42}},
	{Name: "dark_green", ControlChar: '2', FG: [3]byte{0, 170, 0}, BG: [3]byte{0, 42, 0}},
	{Name: "dark_aqua", ControlChar: '3', FG: [3]byte{0, 170, 170}, BG: [3]byte{0, 42, 42}},
	{Name: "dark_red", ControlChar: '4', FG: [3]byte{170, 0, 0}, BG: [3]byte{42, 0, 0}},
	{Name: "dark_purple", ControlChar: '5', FG: [3]byte{170, 0, 170}, BG: [3]byte{42, 0, 42}},
	{Name: "gold", ControlChar: '6', FG: [3]byte{255, 170, 0}, BG: [3]byte{42, 42, 0}},
	{Name: "gray", ControlChar: '7', FG: [3]byte{170, 170, 170}, BG: [3]byte{42, 42, 42}},
	{Name: "dark_gray", ControlChar: '8', FG: [3]byte{85, 85, 85}, BG: [3]byte{21, 21, 21}},
	{Name: "blue", ControlChar: '9', FG: [3]byte{85, 85, 255}, BG: [3]byte{21, 21, 63}},
	{Name: "green", ControlChar: 'a', FG: [3]byte{85, 255, 85}, BG: [3]byte{21, 63, 21}},
	{Name: "aqua", ControlChar: 'b', FG: [3]byte{85, 255, 255}, BG: [3]byte{21, 63, 63}},
	{Name: "red", ControlChar: 'c', FG: [3]byte{255, 85, 85}, BG: [3]byte{63, 21, 21}},
	{Name: "light_purple", ControlChar: 'd', FG: [3]byte{255, 85, 255}, BG: [3]byte{63, 21, 63}},
	{Name: "yellow", ControlChar: 'e', FG: [3]byte{255, 255, 85}, BG: [3]byte{63, 63, 21}},
	{Name: "white", ControlChar: 'f', FG: [3]byte{255, 255, 255}, BG: [3]byte{63, 63, 63}},
}

// LookupColor resolves a color name (as it appears in the "color" key of
// a chat compound) to Reset, one of Colors, or not-found.
func LookupColor(name string) (Color, bool) {
	if name == Reset.Name {
		return Reset, true
	}
	for _, c := range Colors {
		if c.Name == name {
			return c, true
		}
	}
	return Color{}, false
}
