package ui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys simulates keypresses (Vim-like tokens and literal text)
// against m. settle, when non-nil, runs after every literal run of text and
// every key token; headless callers use it to let debounces fire.
func ApplyStartupKeys(m *Model, keys []string, settle func()) {
	if len(keys) == 0 || m == nil {
		return
	}
	send := func(msg tea.Msg) {
		m.Update(msg)
	}
	done := func() {
		if settle != nil {
			settle()
		}
		m.pump()
		m.syncWindows()
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		// Leading backslash forces literal text (e.g., "\\<tab>").
		if strings.HasPrefix(token, `\`) {
			for _, r := range strings.TrimPrefix(token, `\`) {
				send(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
			done()
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if segment.isVimKey {
				if msgs, ok := msgsFromToken(segment.text); ok {
					for _, msg := range msgs {
						send(msg)
					}
					done()
					continue
				}
			}
			for _, r := range segment.text {
				send(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
			done()
		}
	}
}

// tokenSegment is a parsed piece of a token: a <...> key or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into <...> keys and literal text.
// Example: "usd<down>" -> [{"usd", false}, {"<down>", true}]
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token

	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			// No closing >, treat rest as literal text
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isVimKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}

	return segments
}

// msgsFromToken parses a Vim-like token into messages.
// Examples: "<Esc>", "<CR>", "<Tab>", "<S-Tab>", "<BS>", "<C-l>",
// "<Click:2,5>" (left click at column 2, row 5).
func msgsFromToken(token string) ([]tea.Msg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	lower := strings.ToLower(inner)
	key := func(code rune) ([]tea.Msg, bool) {
		return []tea.Msg{tea.KeyPressMsg{Code: code}}, true
	}
	switch lower {
	case "esc", "c-[", "escape":
		return key(tea.KeyEscape)
	case "cr", "enter", "return":
		return key(tea.KeyEnter)
	case "tab":
		return key(tea.KeyTab)
	case "s-tab":
		return []tea.Msg{tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}}, true
	case "space":
		return []tea.Msg{tea.KeyPressMsg{Code: ' ', Text: " "}}, true
	case "bs", "backspace":
		return key(tea.KeyBackspace)
	case "up":
		return key(tea.KeyUp)
	case "down":
		return key(tea.KeyDown)
	case "left":
		return key(tea.KeyLeft)
	case "right":
		return key(tea.KeyRight)
	case "c-l":
		return []tea.Msg{tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}}, true
	}
	if rest, ok := strings.CutPrefix(lower, "click:"); ok {
		xs, ys, found := strings.Cut(rest, ",")
		if !found {
			return nil, false
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return nil, false
		}
		return []tea.Msg{tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}}, true
	}
	return nil, false
}
