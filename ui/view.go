package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)

	focusedLabel = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.running {
		return ""
	}

	var b strings.Builder

	fmt.Fprintln(&b, label("Username", m.focus == focusUsername))
	fmt.Fprintln(&b, m.username.View())
	fmt.Fprintln(&b, label("Password", m.focus == focusPassword))
	fmt.Fprintln(&b, m.password.View())

	session := "tty"
	if len(m.sessions) > 0 {
		session = m.sessions[m.sessionAt].Name
	}
	fmt.Fprintln(&b, label("Session", m.focus == focusSession)+" "+session)

	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))

	body := boxStyle.Render(b.String())

	if m.powerMenuOpen {
		body += "\n" + boxStyle.Render("[s]hutdown  [r]eboot  [esc] cancel")
	}

	return body + "\n" + statusStyle.Render("tab: next field   enter: log in   f1: power menu   ctrl+c: quit")
}

func label(text string, focused bool) string {
	if focused {
		return focusedLabel.Render("> " + text)
	}
	return "  " + text
}
