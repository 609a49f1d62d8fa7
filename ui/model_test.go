package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go.lemurs.sh/lemurs/cache"
	"go.lemurs.sh/lemurs/config"
	"go.lemurs.sh/lemurs/protocol"
)

func newTestModel() model {
	ch := protocol.NewChannels(4)
	return newModel(ch, config.Default(), cache.Info{Username: "ada", SessionName: "tty"})
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel()
	if m.focus != focusUsername {
		t.Fatalf("initial focus = %v, want focusUsername", m.focus)
	}
	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	got := next.(model)
	if got.focus != focusPassword {
		t.Fatalf("focus after tab = %v, want focusPassword", got.focus)
	}
}

func TestEnterSendsAttemptWithSelectedSession(t *testing.T) {
	m := newTestModel()
	m.username.SetValue("ada")
	m.password.SetValue("secret")

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case msg := <-m.ch.ToEngine:
		attempt, ok := msg.(protocol.Attempt)
		if !ok {
			t.Fatalf("got %T, want protocol.Attempt", msg)
		}
		if attempt.Username != "ada" || attempt.Secret != "secret" {
			t.Fatalf("attempt = %+v", attempt)
		}
	default:
		t.Fatal("expected an Attempt on ToEngine")
	}
}

func TestBusyMessageSuppressesNewAttempts(t *testing.T) {
	m := newTestModel()
	next, _ := m.handleEngineMsg(protocol.Busy{})
	m = next.(model)
	if !m.busy {
		t.Fatal("expected busy to be true after protocol.Busy")
	}

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	select {
	case msg := <-m.ch.ToEngine:
		t.Fatalf("expected no Attempt while busy, got %#v", msg)
	default:
	}
}

func TestSessionStartedReleasesTerminal(t *testing.T) {
	m := newTestModel()
	next, cmd := m.handleEngineMsg(protocol.SessionStarted{})
	got := next.(model)
	if !got.running {
		t.Fatal("expected running to be true after SessionStarted")
	}
	if cmd == nil {
		t.Fatal("expected a non-nil batched command")
	}
}

func TestSessionsChangedRescansAndKeepsSelection(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gnome.desktop"), nil, 0755); err != nil {
		t.Fatalf("write session file: %v", err)
	}

	cfg := config.Default()
	cfg.XsessionsDir = dir
	cfg.WlsessionsDir = ""

	ch := protocol.NewChannels(4)
	m := newModel(ch, cfg, cache.Info{SessionName: "tty"})
	if len(m.sessions) != 2 {
		t.Fatalf("got %d sessions before rescan, want 2 (gnome + tty)", len(m.sessions))
	}

	if err := os.WriteFile(filepath.Join(dir, "sway.desktop"), nil, 0755); err != nil {
		t.Fatalf("write second session file: %v", err)
	}

	next, _ := m.handleEngineMsg(protocol.SessionsChanged{})
	got := next.(model)

	if len(got.sessions) != 3 {
		t.Fatalf("got %d sessions after rescan, want 3", len(got.sessions))
	}
	if got.sessions[got.sessionAt].Name != "tty" {
		t.Errorf("selection = %q, want tty to remain selected", got.sessions[got.sessionAt].Name)
	}
}

func TestPromptAnswersFromPasswordField(t *testing.T) {
	m := newTestModel()
	m.password.SetValue("one-time-code")

	_, _ = m.handleEngineMsg(protocol.Prompt{Text: "OTP: ", Echo: false})

	select {
	case msg := <-m.ch.ToEngine:
		resp, ok := msg.(protocol.InputResponse)
		if !ok || resp.Text != "one-time-code" {
			t.Fatalf("got %#v, want InputResponse{one-time-code}", msg)
		}
	default:
		t.Fatal("expected an InputResponse on ToEngine")
	}
}
