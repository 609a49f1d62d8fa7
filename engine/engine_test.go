package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.lemurs.sh/lemurs/config"
	"go.lemurs.sh/lemurs/logging"
	"go.lemurs.sh/lemurs/protocol"
	"go.lemurs.sh/lemurs/session"

	"pkt.systems/pslog"
)

func newTestEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	sinks := &logging.Sinks{Engine: os.Stderr, Client: os.Stderr, Xorg: os.Stderr}
	return &Engine{
		Config:   cfg,
		Channels: protocol.NewChannels(4),
		Log:      pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured}),
		Sinks:    sinks,
		TTY:      "tty2",
		VTNumber: 2,
	}
}

func TestHandleAttemptPreviewModeShortCircuits(t *testing.T) {
	e := newTestEngine(t, config.Config{Preview: true})

	e.handleAttempt(nil, protocol.Attempt{Username: "alice", SessionName: "sway"})

	info := <-e.Channels.ToUI
	if _, ok := info.(protocol.Info); !ok {
		t.Fatalf("first message = %#v, want Info", info)
	}
	ended := <-e.Channels.ToUI
	se, ok := ended.(protocol.SessionEnded)
	if !ok || se.ExitStatus != 0 {
		t.Fatalf("second message = %#v, want SessionEnded{0}", ended)
	}
}

func TestResolveDescriptorFindsXsession(t *testing.T) {
	xdir := t.TempDir()
	if err := os.WriteFile(filepath.Join(xdir, "gnome"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(t, config.Config{XsessionsDir: xdir})
	got, err := e.resolveDescriptor("gnome", "/bin/bash")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != session.KindX11 || got.Name != "gnome" {
		t.Errorf("got %+v", got)
	}
}

func TestResolveDescriptorFallsBackToTTY(t *testing.T) {
	e := newTestEngine(t, config.Config{})
	got, err := e.resolveDescriptor("tty", "/bin/bash")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != session.KindTTY || got.ExecutablePath != "/bin/bash" {
		t.Errorf("got %+v", got)
	}
}

func TestResolveDescriptorUnknownNameErrors(t *testing.T) {
	e := newTestEngine(t, config.Config{})
	if _, err := e.resolveDescriptor("does-not-exist", "/bin/bash"); err == nil {
		t.Fatal("expected an error for an unknown session name")
	}
}

func TestRunForwardsSessionsChanged(t *testing.T) {
	xdir := t.TempDir()
	e := newTestEngine(t, config.Config{XsessionsDir: xdir, Preview: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	if r := <-e.Channels.ToUI; r != (protocol.Ready{}) {
		t.Fatalf("first message = %#v, want Ready", r)
	}

	if err := os.WriteFile(filepath.Join(xdir, "gnome.desktop"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write session file: %v", err)
	}

	select {
	case msg := <-e.Channels.ToUI:
		if _, ok := msg.(protocol.SessionsChanged); !ok {
			t.Fatalf("got %#v, want SessionsChanged", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for SessionsChanged")
	}

	cancel()
	<-done
}
