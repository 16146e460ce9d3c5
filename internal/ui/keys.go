package ui

// Action is what a bound key does on the selector screen.
type Action string

const (
	ActionNone      Action = ""
	ActionUp        Action = "up"
	ActionDown      Action = "down"
	ActionSelect    Action = "select"
	ActionClose     Action = "close"
	ActionNextFocus Action = "next_focus"
	ActionPrevFocus Action = "prev_focus"
	ActionClear     Action = "clear_selection"
	ActionCopy      Action = "copy"
	ActionQuit      Action = "quit"
)

// KeyBindings maps key strings (as tea.KeyPressMsg.String reports them) to
// actions. Unbound keys go to the focused text field.
var KeyBindings = map[string]Action{
	"up":        ActionUp,
	"ctrl+p":    ActionUp,
	"down":      ActionDown,
	"ctrl+n":    ActionDown,
	"enter":     ActionSelect,
	"esc":       ActionClose,
	"tab":       ActionNextFocus,
	"shift+tab": ActionPrevFocus,
	"ctrl+l":    ActionClear,
	"ctrl+y":    ActionCopy,
	"ctrl+c":    ActionQuit,
}

// ActionFor returns the action bound to key.
func ActionFor(key string) Action {
	return KeyBindings[key]
}
