package tui

// Key bindings.
const (
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyEnter     = "enter"
	keyEsc       = "esc"
	keyBackspace = "backspace"
	keySlash     = "/"
	keyLeft      = "left"
	keyRight     = "right"
	keyUp        = "up"
	keyDown      = "down"
	keyH         = "h"
	keyJ         = "j"
	keyK         = "k"
	keyL         = "l"
	keyFirst     = "g"
	keyLast      = "G"
)
