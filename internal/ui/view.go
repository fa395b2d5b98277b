package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("221"))
	cursorStyle   = selectedStyle.Underline(true).Bold(true)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Align(lipgloss.Center)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sublookup"))
	b.WriteString(dimStyle.Render("  window " + orDash(m.window.String()) + "  ipc " + orDash(m.endpoint.String())))
	b.WriteString("\n")

	box := boxStyle
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}
	b.WriteString(box.Render(m.renderWords()))
	b.WriteString("\n")

	if m.status != "" {
		if m.endpointGone {
			b.WriteString(warnStyle.Render(m.status))
		} else {
			b.WriteString(dimStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	for _, snippet := range m.preview {
		b.WriteString("  • " + snippet + "\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderWords() string {
	if len(m.words) == 0 {
		return dimStyle.Render("waiting for subtitles…")
	}

	lo, hi := m.selectionBounds()
	parts := make([]string, len(m.words))
	for i, w := range m.words {
		switch {
		case i == m.cursor:
			parts[i] = cursorStyle.Render(w)
		case i >= lo && i <= hi:
			parts[i] = selectedStyle.Render(w)
		default:
			parts[i] = wordStyle.Render(w)
		}
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "–"
	}
	return s
}
