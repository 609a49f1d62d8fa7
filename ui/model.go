// Package ui is the reference terminal UI for the engine's C8 protocol
// (§4.15): a username field, a masked password field, a session
// switcher, and a power-menu overlay, built on bubbletea/lipgloss/bubbles.
// It exists to prove the protocol is drivable from a real terminal
// program, not to be a polished login screen.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"

	"go.lemurs.sh/lemurs/cache"
	"go.lemurs.sh/lemurs/config"
	"go.lemurs.sh/lemurs/protocol"
	"go.lemurs.sh/lemurs/session"
)

type focusField int

const (
	focusUsername focusField = iota
	focusPassword
	focusSession
	focusPowerMenu
)

type engineMsg struct{ msg protocol.ToUI }

func listenEngine(ch <-chan protocol.ToUI) tea.Cmd {
	return func() tea.Msg { return engineMsg{msg: <-ch} }
}

// model is the bubbletea Model driving the UI side of the protocol.
type model struct {
	ch  *protocol.Channels
	cfg config.Config

	username textinput.Model
	password textinput.Model

	sessions  []session.Descriptor
	sessionAt int

	focus focusField

	status   string
	errText  string
	busy     bool
	running  bool
	powerMenuOpen bool

	quitting bool
}

func newModel(ch *protocol.Channels, cfg config.Config, cached cache.Info) model {
	username := textinput.New()
	username.Placeholder = "username"
	username.SetValue(cached.Username)
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	descs, _ := session.Discover(cfg.XsessionsDir, cfg.WlsessionsDir)
	descs = append(descs, session.TTYDescriptor(""))

	sessionAt := 0
	for i, d := range descs {
		if d.Name == cached.SessionName {
			sessionAt = i
			break
		}
	}

	return model{
		ch:        ch,
		cfg:       cfg,
		username:  username,
		password:  password,
		sessions:  descs,
		sessionAt: sessionAt,
		focus:     focusUsername,
		status:    "Ready",
	}
}

// rescanSessions reloads the session descriptor list, keeping the
// currently selected name if it still exists.
func (m model) rescanSessions() model {
	prev := ""
	if len(m.sessions) > 0 {
		prev = m.sessions[m.sessionAt].Name
	}

	descs, _ := session.Discover(m.cfg.XsessionsDir, m.cfg.WlsessionsDir)
	descs = append(descs, session.TTYDescriptor(""))

	m.sessions = descs
	m.sessionAt = 0
	for i, d := range descs {
		if d.Name == prev {
			m.sessionAt = i
			break
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	return listenEngine(m.ch.ToUI)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineMsg:
		return m.handleEngineMsg(msg.msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleEngineMsg(toUI protocol.ToUI) (tea.Model, tea.Cmd) {
	switch v := toUI.(type) {
	case protocol.Ready:
		m.busy = false
		m.running = false
		m.status = "Ready"
	case protocol.Busy:
		m.busy = true
		m.status = "Authenticating..."
	case protocol.Prompt:
		m.status = v.Text
		// The reference UI answers prompts with whatever is currently in
		// the password field; a fuller UI would render v.Echo and collect
		// a fresh line.
		m.ch.ToEngine <- protocol.InputResponse{Text: m.password.Value()}
	case protocol.Info:
		m.status = v.Text
	case protocol.Error:
		m.errText = v.Text
	case protocol.SessionStarted:
		m.running = true
		return m, tea.Batch(listenEngine(m.ch.ToUI), tea.ReleaseTerminal)
	case protocol.SessionEnded:
		m.running = false
		return m, tea.Batch(listenEngine(m.ch.ToUI), tea.RestoreTerminal)
	case protocol.SessionsChanged:
		m = m.rescanSessions()
	}
	return m, listenEngine(m.ch.ToUI)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.powerMenuOpen {
		return m.handlePowerMenuKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.ch.ToEngine <- protocol.Quit{}
		return m, tea.Quit
	case "f1":
		m.powerMenuOpen = true
		return m, nil
	case "tab":
		m.focus = (m.focus + 1) % 3
		m.refocus()
		return m, nil
	case "left", "right":
		if m.focus == focusSession && len(m.sessions) > 0 {
			if msg.String() == "left" {
				m.sessionAt = (m.sessionAt - 1 + len(m.sessions)) % len(m.sessions)
			} else {
				m.sessionAt = (m.sessionAt + 1) % len(m.sessions)
			}
		}
		return m, nil
	case "enter":
		if m.busy || m.running {
			return m, nil
		}
		name := ""
		if len(m.sessions) > 0 {
			name = m.sessions[m.sessionAt].Name
		}
		m.errText = ""
		m.ch.ToEngine <- protocol.Attempt{
			Username:    m.username.Value(),
			Secret:      m.password.Value(),
			SessionName: name,
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusUsername:
		m.username, cmd = m.username.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *model) refocus() {
	m.username.Blur()
	m.password.Blur()
	switch m.focus {
	case focusUsername:
		m.username.Focus()
	case focusPassword:
		m.password.Focus()
	}
}

func (m model) handlePowerMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.ch.ToEngine <- protocol.Shutdown{}
		m.quitting = true
		return m, tea.Quit
	case "r":
		m.ch.ToEngine <- protocol.Reboot{}
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.powerMenuOpen = false
	}
	return m, nil
}

// Run starts the reference TUI against ch, using cfg to discover
// sessions and the info cache at cfg.CachePath to pre-populate the
// username/session fields.
func Run(ctx context.Context, ch *protocol.Channels, cfg config.Config) error {
	cached, _ := cache.Load(cfg.CachePath)
	m := newModel(ch, cfg, cached)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
