package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xful-bep/crysknife/internal/log"
	"github.com/xful-bep/crysknife/internal/tui"
)

// runTUI launches the full-screen Bubble Tea application. Logging is kept to
// errors so it does not draw over the screen.
func runTUI() error {
	m := tui.NewModel(auditConfig(), log.Quiet())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
