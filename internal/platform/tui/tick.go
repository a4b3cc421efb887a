// Package tui provides the Bubble Tea front-end for stardust runs.
// It handles the terminal UI loop, key mapping, and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastDuration is how long a status message stays on screen.
const toastDuration = 2 * time.Second

// toastExpiredMsg clears the toast with the matching sequence number.
type toastExpiredMsg int

// toastCmd returns a command that expires toast seq after toastDuration.
func toastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg(seq)
	})
}
