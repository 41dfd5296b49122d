// Package input abstracts the six-button handheld controls: keyboard
// keys or GPIO pins feed the same Event stream, debounced and with
// hold-to-scroll repeat handled here rather than in the screens.
package input

import "fmt"

// Button is one of the six physical controls.
type Button int

const (
	Up Button = iota
	Down
	Left
	Right
	A // select / confirm
	B // back
)

var buttonNames = map[Button]string{
	Up: "up", Down: "down", Left: "left", Right: "right", A: "a", B: "b",
}

func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButton converts a config key ("up", "a") to a Button.
func ParseButton(name string) (Button, error) {
	for b, n := range buttonNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// Event is a debounced button edge.
type Event struct {
	Button  Button
	Pressed bool
}

// MapKey translates a terminal key name (bubbletea's KeyMsg.String) to a
// Button. Arrow keys and hjkl move, enter/z select, esc/x go back.
func MapKey(key string) (Button, bool) {
	switch key {
	case "up", "k":
		return Up, true
	case "down", "j":
		return Down, true
	case "left", "h":
		return Left, true
	case "right", "l":
		return Right, true
	case "enter", "z", " ":
		return A, true
	case "esc", "x", "backspace":
		return B, true
	}
	return 0, false
}
