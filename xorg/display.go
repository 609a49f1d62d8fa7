// Package xorg launches and tears down an Xorg server for one X11 login
// attempt (§4.6): display number selection, MIT-MAGIC-COOKIE-1
// provisioning via xauth, readiness handshake, and reverse teardown.
package xorg

import (
	"fmt"
	"os"
	"strconv"

	"go.lemurs.sh/lemurs/errs"
)

// lockPath returns the conventional X server lock file path for a
// display number.
func lockPath(n int) string { return fmt.Sprintf("/tmp/.X%d-lock", n) }

// chooseDisplay probes [0, probeRange) for a free display number by
// attempting to create its lock file exclusively; the first number whose
// lock file we create wins. The lock file's contents are the owning pid,
// left-padded to 11 bytes, followed by a newline, matching the format
// Xorg itself writes.
func chooseDisplay(probeRange int, pid int) (num int, path string, err error) {
	for n := 0; n < probeRange; n++ {
		p := lockPath(n)
		f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return 0, "", &errs.XorgSpawnFailed{Err: fmt.Errorf("create %s: %w", p, err)}
		}
		_, werr := fmt.Fprintf(f, "%11d\n", pid)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			os.Remove(p)
			return 0, "", &errs.XorgSpawnFailed{Err: fmt.Errorf("write %s: %w", p, firstNonNil(werr, cerr))}
		}
		return n, p, nil
	}
	return 0, "", &errs.XorgSpawnFailed{Err: fmt.Errorf("no free display number in [0,%d)", probeRange)}
}

func firstNonNil(errsIn ...error) error {
	for _, e := range errsIn {
		if e != nil {
			return e
		}
	}
	return nil
}

// lockOwnedByPid reports whether path's lock file contents match pid,
// guarding teardown against removing a lock another server just claimed.
func lockOwnedByPid(path string, pid int) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	got, convErr := strconv.Atoi(trimLockContents(data))
	return convErr == nil && got == pid
}

func trimLockContents(data []byte) string {
	s := string(data)
	for len(s) > 0 && (s[0] == ' ' || s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		if s[0] == ' ' {
			s = s[1:]
		} else {
			s = s[:len(s)-1]
		}
	}
	return s
}
