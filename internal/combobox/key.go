package combobox

import "strings"

// Key is a navigation key the dropdown reacts to.
type Key string

const (
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
)

// Valid reports whether k is one of the navigation keys.
func (k Key) Valid() bool {
	switch k {
	case KeyArrowUp, KeyArrowDown, KeyEnter, KeyEscape:
		return true
	}
	return false
}

// ParseKey maps DOM-style names ("ArrowDown") and terminal names ("down",
// "esc") onto a Key.
func ParseKey(s string) (Key, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrowup", "up":
		return KeyArrowUp, true
	case "arrowdown", "down":
		return KeyArrowDown, true
	case "enter", "return":
		return KeyEnter, true
	case "escape", "esc":
		return KeyEscape, true
	}
	return "", false
}
