package env

import (
	"fmt"
	"path"
)

// Session identifies the kind of login session being composed for, used
// to pick DISPLAY/XDG_SESSION_TYPE.
type Session int

const (
	SessionTTY Session = iota
	SessionX11
	SessionWayland
)

func (s Session) String() string {
	switch s {
	case SessionX11:
		return "x11"
	case SessionWayland:
		return "wayland"
	default:
		return "tty"
	}
}

// Passwd mirrors the fields of the authenticated passwd entry the composer
// needs; kept separate from os/user.User so callers can construct it
// without a real lookup in tests.
type Passwd struct {
	Uid      int
	Gid      int
	Username string
	Home     string
	Shell    string
}

// ComposeParams carries everything the §4.3 variable list depends on that
// is not already known to the Container itself.
type ComposeParams struct {
	Passwd      Passwd
	Session     Session
	SessionName string
	DisplayNum  int // only meaningful when Session == SessionX11
	VTNumber    uint
	DefaultPath string // configurable fallback for PATH, §4.3 rule 10
}

// Compose applies the canonical login environment variables on top of c in
// the exact order given by §4.3. Every "only if unset" rule checks the live
// environment value prior to this call, not the Container's snapshot.
func Compose(c *Container, p ComposeParams) error {
	steps := []func() error{
		func() error {
			if p.Session == SessionX11 {
				return c.Set("DISPLAY", fmt.Sprintf(":%d", p.DisplayNum))
			}
			return c.Unset("DISPLAY")
		},
		func() error { return c.Set("XDG_SESSION_TYPE", p.Session.String()) },
		func() error { return c.Set("XDG_SESSION_CLASS", "user") },
		func() error { return c.Set("XDG_SESSION_DESKTOP", p.SessionName) },
		func() error { return c.Set("XDG_CURRENT_DESKTOP", p.SessionName) },
		func() error { return c.SetIfUnset("XDG_SEAT", "seat0") },
		func() error { return c.SetIfUnset("XDG_VTNR", fmt.Sprintf("%d", p.VTNumber)) },
		func() error {
			return c.SetIfUnset("XDG_RUNTIME_DIR", fmt.Sprintf("/run/user/%d", p.Passwd.Uid))
		},
		func() error { return c.SetIfUnset("XDG_SESSION_ID", "1") },
		func() error { return c.Set("HOME", p.Passwd.Home) },
		func() error { return c.Set("PWD", p.Passwd.Home) },
		func() error { return c.Set("SHELL", p.Passwd.Shell) },
		func() error { return c.Set("USER", p.Passwd.Username) },
		func() error { return c.Set("LOGNAME", p.Passwd.Username) },
		func() error {
			defaultPath := p.DefaultPath
			if defaultPath == "" {
				defaultPath = "/usr/local/sbin:/usr/local/bin:/usr/bin"
			}
			return c.Set("PATH", defaultPath)
		},
		func() error { return c.SetIfUnset("XDG_CONFIG_HOME", path.Join(p.Passwd.Home, ".config")) },
		func() error { return c.SetIfUnset("XDG_CACHE_HOME", path.Join(p.Passwd.Home, ".cache")) },
		func() error { return c.SetIfUnset("XDG_DATA_HOME", path.Join(p.Passwd.Home, ".local", "share")) },
		func() error { return c.SetIfUnset("XDG_STATE_HOME", path.Join(p.Passwd.Home, ".local", "state")) },
		func() error { return c.SetIfUnset("XDG_DATA_DIRS", "/usr/local/share:/usr/share") },
		func() error { return c.SetIfUnset("XDG_CONFIG_DIRS", "/etc/xdg") },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
