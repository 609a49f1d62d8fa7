// Package engine implements the top-level login manager loop: it drives
// C1-C12 for one Attempt at a time, talks to the UI exclusively through
// the C8 protocol, and guarantees teardown via the C10 ledger.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.lemurs.sh/lemurs/cache"
	"go.lemurs.sh/lemurs/config"
	"go.lemurs.sh/lemurs/dispatch"
	"go.lemurs.sh/lemurs/env"
	"go.lemurs.sh/lemurs/errs"
	"go.lemurs.sh/lemurs/internal/platform"
	"go.lemurs.sh/lemurs/logging"
	"go.lemurs.sh/lemurs/pamsession"
	"go.lemurs.sh/lemurs/protocol"
	"go.lemurs.sh/lemurs/session"
	"go.lemurs.sh/lemurs/teardown"
	"go.lemurs.sh/lemurs/utmpx"
	"go.lemurs.sh/lemurs/vt"
	"go.lemurs.sh/lemurs/xorg"

	"pkt.systems/pslog"
)

// Engine owns the login loop. One Engine serves one controlling TTY.
type Engine struct {
	Config   config.Config
	Channels *protocol.Channels
	Log      pslog.Logger
	Sinks    *logging.Sinks
	OS       platform.OS
	Utmp     utmpx.Writer
	TTY      string
	VTNumber uint

	nextDisplayNum int
}

// New builds an Engine ready to Run.
func New(cfg config.Config, ch *protocol.Channels, sinks *logging.Sinks, tty string, vtNum uint) *Engine {
	return &Engine{
		Config:   cfg,
		Channels: ch,
		Log:      logging.EngineLogger(sinks),
		Sinks:    sinks,
		OS:       platform.Std{},
		Utmp:     utmpx.DefaultFileWriter(),
		TTY:      tty,
		VTNumber: vtNum,
	}
}

// Run is the engine's main loop: it serves Attempt messages until Quit,
// or until ctx is canceled. It also watches the session directories for
// changes (§4.11) and forwards them to the UI as SessionsChanged.
func (e *Engine) Run(ctx context.Context) error {
	watcher, err := session.NewWatcher(e.Config.XsessionsDir, e.Config.WlsessionsDir)
	if err != nil {
		e.Log.Error("session watcher failed to start", "err", err.Error())
	} else {
		defer watcher.Close()
	}

	var changed <-chan struct{}
	var watchErrs <-chan error
	if watcher != nil {
		changed = watcher.Changed
		watchErrs = watcher.Errs
	}

	e.Channels.ToUI <- protocol.Ready{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			e.Channels.ToUI <- protocol.SessionsChanged{}
		case werr := <-watchErrs:
			e.Log.Error("session watcher error", "err", werr.Error())
		case msg := <-e.Channels.ToEngine:
			switch m := msg.(type) {
			case protocol.Attempt:
				e.handleAttempt(ctx, m)
				e.Channels.ToUI <- protocol.Ready{}
			case protocol.Shutdown:
				return e.power(ctx, "poweroff")
			case protocol.Reboot:
				return e.power(ctx, "reboot")
			case protocol.Quit:
				return nil
			}
		}
	}
}

func (e *Engine) power(ctx context.Context, bin string) error {
	return exec.CommandContext(ctx, bin).Run()
}

// handleAttempt runs one full login attempt end to end, always
// unwinding via the C10 ledger before returning. It always ends by
// emitting one SessionEnded to the UI; on failure that SessionEnded
// carries ExitStatus -1 and is preceded by one Error.
func (e *Engine) handleAttempt(ctx context.Context, attempt protocol.Attempt) {
	var ledger teardown.Ledger
	defer ledger.Unwind()

	log := e.Log.With("session", attempt.SessionName)

	if e.Config.Preview {
		e.Channels.ToUI <- protocol.Info{Text: "preview mode: skipping PAM/UTMPX/VT/X"}
		e.Channels.ToUI <- protocol.SessionEnded{ExitStatus: 0}
		return
	}

	e.Channels.ToUI <- protocol.Busy{}

	result, err := e.runAttempt(ctx, &ledger, attempt, log)
	if err != nil {
		var userErr errs.Userer
		if asUserer(err, &userErr) {
			log.Error("attempt failed", "err", err.Error())
			e.Channels.ToUI <- protocol.Error{Text: userErr.Message()}
		} else {
			log.Error("attempt failed", "err", err.Error())
			e.Channels.ToUI <- protocol.Error{Text: "Internal error"}
		}
		e.Channels.ToUI <- protocol.SessionEnded{ExitStatus: -1}
		return
	}

	e.Channels.ToUI <- protocol.SessionEnded{ExitStatus: result.ExitStatus}
}

func asUserer(err error, target *errs.Userer) bool {
	u, ok := err.(errs.Userer)
	if ok {
		*target = u
	}
	return ok
}

type attemptConversation struct {
	ch *protocol.Channels
}

func (c *attemptConversation) Prompt(ctx context.Context, text string, echo bool) (string, error) {
	c.ch.ToUI <- protocol.Prompt{Text: text, Echo: echo}
	select {
	case msg := <-c.ch.ToEngine:
		if r, ok := msg.(protocol.InputResponse); ok {
			return r.Text, nil
		}
		return "", fmt.Errorf("engine: unexpected message while awaiting conversation input")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *attemptConversation) Info(text string)  { c.ch.ToUI <- protocol.Info{Text: text} }
func (c *attemptConversation) Error(text string) { c.ch.ToUI <- protocol.Error{Text: text} }

func (e *Engine) runAttempt(ctx context.Context, ledger *teardown.Ledger, attempt protocol.Attempt, log pslog.Logger) (dispatch.Result, error) {
	driver, err := pamsession.New(ctx, e.Config.PamService, attempt.Username, attempt.Secret,
		&attemptConversation{ch: e.Channels}, e.Config.InputTimeout)
	if err != nil {
		return dispatch.Result{}, err
	}
	ledger.Push(teardown.Func("pam", driver.Close))

	if err := driver.Authenticate(); err != nil {
		return dispatch.Result{}, err
	}
	if err := driver.AcctMgmt(); err != nil {
		return dispatch.Result{}, err
	}

	passwd, err := env.LookupPasswd(attempt.Username)
	if err != nil {
		return dispatch.Result{}, &errs.SystemError{Op: "lookup passwd", Err: err}
	}

	desc, err := e.resolveDescriptor(attempt.SessionName, passwd.Shell)
	if err != nil {
		return dispatch.Result{}, err
	}

	if err := driver.EstablishCreds(); err != nil {
		return dispatch.Result{}, err
	}

	if err := vt.ChownTTY(vt.TTYPath(e.VTNumber), passwd.Uid, passwd.Gid); err != nil {
		log.Error("chown tty failed", "err", err.Error())
	} else {
		ledger.Push(teardown.Func("vt-chown", func() error {
			return vt.ResetTTY(vt.TTYPath(e.VTNumber))
		}))
	}

	container := env.New(e.OS)
	composeParams := env.ComposeParams{
		Passwd:      passwd,
		Session:     sessionKind(desc.Kind),
		SessionName: desc.Name,
		VTNumber:    e.VTNumber,
		DefaultPath: e.Config.PathEnv,
	}

	var server *xorg.Server
	if desc.Kind == session.KindX11 {
		server, err = xorg.Start(ctx, xorg.Config{
			Binary:       e.Config.XorgBinary,
			AuthBinary:   e.Config.XauthBinary,
			ProbeRange:   e.Config.DisplayProbeRange,
			ReadyTimeout: e.Config.XorgReadyTimeout,
			RuntimeDir:   os.Getenv("XDG_RUNTIME_DIR"),
			VTNumber:     e.VTNumber,
			LogWriter:    logging.Writer(logging.XorgLogger(e.Sinks)),
		})
		if err != nil {
			return dispatch.Result{}, err
		}
		ledger.Push(teardown.Func("xorg", server.Stop))
		composeParams.DisplayNum = server.DisplayNum
	}

	if err := env.Compose(container, composeParams); err != nil {
		return dispatch.Result{}, &errs.SystemError{Op: "compose environment", Err: err}
	}
	ledger.Push(teardown.Func("env", container.Restore))
	if server != nil {
		if err := container.Set("XAUTHORITY", server.Xauthority); err != nil {
			log.Error("set XAUTHORITY failed", "err", err.Error())
		}
	}

	if err := driver.OpenSession(); err != nil {
		return dispatch.Result{}, err
	}

	ttyDevice := ""
	if desc.Kind == session.KindTTY {
		ttyDevice = vt.TTYPath(e.VTNumber)
	}

	result, err := dispatch.Spawn(ctx, dispatch.Params{
		Passwd:     passwd,
		Environ:    e.OS.Environ(),
		Script:     desc.ExecutablePath,
		TTY:        e.TTY,
		TTYDevice:  ttyDevice,
		ClientLog:  logging.Writer(logging.ClientLogger(e.Sinks)),
		UtmpWriter: e.Utmp,
		Started:    func() { e.Channels.ToUI <- protocol.SessionStarted{} },
	})

	if err != nil {
		if _, ok := err.(*errs.SessionCrashed); !ok {
			return result, err
		}
		// A nonzero exit is reported to the UI through SessionEnded, not
		// treated as an attempt failure.
	}

	// Written only once the child has actually exec'd; a SessionExecFailed
	// above returns before this point.
	if cacheErr := cache.Save(e.Config.CachePath, cache.Info{SessionName: desc.Name, Username: attempt.Username}); cacheErr != nil {
		log.Error("cache save failed", "err", cacheErr.Error())
	}

	return result, nil
}

func (e *Engine) resolveDescriptor(name, shell string) (session.Descriptor, error) {
	descs, err := session.Discover(e.Config.XsessionsDir, e.Config.WlsessionsDir)
	if err != nil {
		return session.Descriptor{}, &errs.SystemError{Op: "discover sessions", Err: err}
	}
	descs = append(descs, session.TTYDescriptor(shell))

	for _, d := range descs {
		if d.Name == name {
			return d, nil
		}
	}
	if len(descs) == 0 {
		return session.Descriptor{}, &errs.NoSessions{}
	}
	return session.Descriptor{}, fmt.Errorf("engine: unknown session %q", name)
}

func sessionKind(k session.Kind) env.Session {
	switch k {
	case session.KindX11:
		return env.SessionX11
	case session.KindWayland:
		return env.SessionWayland
	default:
		return env.SessionTTY
	}
}
