package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// TerminalSize returns the requested size, filling zero dimensions from the
// terminal and then from 80x24.
func TerminalSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// Run starts the interactive program and blocks until the user quits. It
// returns the final selection of every instance by instance ID.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) (map[string][]candidate.Candidate, error) {
	m, err := NewModel(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if opts.Width > 0 || opts.Height > 0 {
		w, h := TerminalSize(opts.Width, opts.Height)
		m.WinWidth, m.WinHeight = w, h
		progOpts = append(progOpts, tea.WithWindowSize(w, h))
	}
	progOpts = append(progOpts, tea.WithContext(ctx))

	prog := tea.NewProgram(m, progOpts...)
	if _, err := prog.Run(); err != nil {
		return nil, err
	}
	return m.Selections(), nil
}
