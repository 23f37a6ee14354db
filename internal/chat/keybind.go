package chat

// keybindNames is the set of option-file key names a "keybind" chat
// trait is allowed to reference. The reader accepts only these so a
// malformed or forged keybind trait fails fast instead of reaching a
// renderer with an opaque string.
var keybindNames = map[string]struct{}{
	"key.forward":              {},
	"key.back":                 {},
	"key.left":                 {},
	"key.right":                {},
	"key.jump":                 {},
	"key.sneak":                {},
	"key.sprint":               {},
	"key.inventory":            {},
	"key.swapOffhand":          {},
	"key.drop":                 {},
	"key.chat":                 {},
	"key.playerlist":           {},
	"key.command":              {},
	"key.screenshot":           {},
	"key.togglePerspective":    {},
	"key.smoothCamera":         {},
	"key.attack":               {},
	"key.use":                  {},
	"key.pickItem":             {},
	"key.saveToolbarActivator": {},
	"key.loadToolbarActivator": {},
	"key.advancements":         {},
	"key.spectatorOutlines":    {},
	"key.fullscreen":           {},
	"key.hotbar.1":             {},
	"key.hotbar.2":             {},
	"key.hotbar.3":             {},
	"key.hotbar.4":             {},
	"key.hotbar.5":             {},
	"key.hotbar.6":             {},
	"key.hotbar.7":             {},
	"key.hotbar.8":             {},
	"key.hotbar.9":             {},
}

// LookupKeybind reports whether name is a recognized option-file key.
func LookupKeybind(name string) bool {
	_, ok := keybindNames[name]
	return ok
}
