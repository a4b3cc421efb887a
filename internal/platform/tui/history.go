package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/stardust/internal/modifier"
)

// History layout constants
const (
	maxHistory     = 100 // Max runs to load
	historyChrome  = 8   // Rows taken by title, stats and help
	minTableHeight = 3
)

// newTable creates the run history table sized to the window.
func (m *Model) newTable() table.Model {
	columns := []table.Column{
		{Title: m.l.T("ui.history.when", nil), Width: 14},
		{Title: m.l.T("ui.history.seed", nil), Width: 12},
		{Title: m.l.T("ui.history.modifier", nil), Width: 12},
		{Title: m.l.T("ui.history.outcome", nil), Width: 8},
		{Title: m.l.T("ui.history.floor", nil), Width: 6},
		{Title: m.l.T("ui.history.reward", nil), Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(minTableHeight, m.height-historyChrome)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadHistory fills the table and the stats line from the history source.
func (m *Model) loadHistory() {
	m.stats = ""
	if m.history == nil {
		m.table.SetRows(nil)
		return
	}

	runs, err := m.history.RecentRuns(m.ctx, maxHistory)
	if err != nil {
		m.table.SetRows(nil)
		m.stats = m.l.T("ui.error", map[string]any{"error": err.Error()})
		return
	}

	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		outcome := m.l.T("ui.history.loss", nil)
		if r.Victory {
			outcome = m.l.T("ui.history.win", nil)
		}
		mod := r.Modifier
		if d, err := modifier.Lookup(r.Modifier); err == nil {
			mod = m.l.T(d.TitleKey, nil)
		}
		rows[i] = table.Row{
			r.FinishedAt.Local().Format("Jan 02 15:04"),
			r.Seed,
			mod,
			outcome,
			strconv.Itoa(r.Floor),
			fmt.Sprintf("+%d", r.Reward),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()

	stats, err := m.history.Stats(m.ctx)
	if err != nil {
		return
	}
	m.stats = m.l.T("ui.history.stats", map[string]any{
		"runs":  stats.Runs,
		"wins":  stats.Wins,
		"floor": stats.BestFloor,
	})
}

func (m Model) viewHistory() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(centerText(m.l.T("ui.history", nil), m.width)))
	b.WriteString("\n\n")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.table.Rows()) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(frame.Render(empty.Render(m.l.T("ui.history.empty", nil))))
	} else {
		b.WriteString(frame.Render(m.table.View()))
	}

	if m.stats != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.HUDLabel.Render(m.stats))
	}
	return b.String()
}
