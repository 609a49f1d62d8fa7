// Package logging wires the engine's three pslog sinks (§4.14 / §6): the
// main engine log, the session client log, and the Xorg server log, each
// a plain file opened O_APPEND|O_CREAT and never truncated.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"pkt.systems/pslog"
)

// Sinks holds the three open log sinks for one engine process.
type Sinks struct {
	Engine *os.File
	Client *os.File
	Xorg   *os.File
}

// Open opens the three sink files under dir. If dir is empty, all three
// loggers are backed by os.Stderr instead (the --no-log path).
func Open(dir string) (*Sinks, error) {
	if dir == "" {
		return &Sinks{Engine: os.Stderr, Client: os.Stderr, Xorg: os.Stderr}, nil
	}

	engine, err := openAppend(filepath.Join(dir, "lemurs.log"))
	if err != nil {
		return nil, err
	}
	client, err := openAppend(filepath.Join(dir, "lemurs.client.log"))
	if err != nil {
		engine.Close()
		return nil, err
	}
	xorg, err := openAppend(filepath.Join(dir, "lemurs.xorg.log"))
	if err != nil {
		engine.Close()
		client.Close()
		return nil, err
	}
	return &Sinks{Engine: engine, Client: client, Xorg: xorg}, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Close closes every open sink, collecting but not short-circuiting on
// individual failures.
func (s *Sinks) Close() error {
	var firstErr error
	for _, f := range []*os.File{s.Engine, s.Client, s.Xorg} {
		if f == nil || f == os.Stderr {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EngineLogger builds the base per-process logger. Attempt-scoped fields
// (session, kind) are attached later via With; a credential is never
// passed to With alongside any other field, and never logged at all.
func EngineLogger(sinks *Sinks) pslog.Logger {
	return pslog.NewWithOptions(sinks.Engine, pslog.Options{Mode: pslog.ModeStructured})
}

// ClientLogger builds the logger that tees a session child's stdout/stderr.
func ClientLogger(sinks *Sinks) pslog.Logger {
	return pslog.NewWithOptions(sinks.Client, pslog.Options{Mode: pslog.ModeStructured})
}

// XorgLogger builds the logger that captures the Xorg server's stdout/stderr.
func XorgLogger(sinks *Sinks) pslog.Logger {
	return pslog.NewWithOptions(sinks.Xorg, pslog.Options{Mode: pslog.ModeStructured})
}

// Writer adapts log to an io.Writer, for teeing a child process's
// stdout/stderr into it via exec.Cmd.
func Writer(log pslog.Logger) io.Writer {
	return pslog.LogLogger(log).Writer()
}
