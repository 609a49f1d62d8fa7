// Package dispatch spawns the session child process (§4.7): privilege
// drop in initgroups → setgid → setuid order, chdir to the user's home,
// a fully replaced environment, UTMPX accounting around the child's
// lifetime, and exit status propagation.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"go.lemurs.sh/lemurs/env"
	"go.lemurs.sh/lemurs/errs"
	"go.lemurs.sh/lemurs/utmpx"
)

// Params carries everything Spawn needs for one session child.
type Params struct {
	Passwd  env.Passwd
	Environ []string // the fully composed environment, KEY=VALUE pairs
	Script  string   // the chosen session's executable path
	TTY     string   // controlling tty name, e.g. "tty2"

	// TTYDevice, when non-empty (e.g. "/dev/tty2"), is opened and handed
	// to the child as stdin/stdout/stderr and controlling terminal,
	// for sessions with no X/Wayland display of their own. When empty,
	// the child's stdout/stderr go to ClientLog instead.
	TTYDevice string

	ClientLog  io.Writer
	UtmpWriter utmpx.Writer

	// Started, if set, is called once the child has successfully exec'd,
	// before Spawn blocks on its exit.
	Started func()
}

// Result is the outcome of one session child's lifetime.
type Result struct {
	ExitStatus int
}

// Spawn execs /bin/sh -lc <script> under the dropped-privilege identity
// in Params.Passwd, records UTMPX accounting around the child's
// lifetime, and blocks until it exits.
//
// Preconditions (unchecked here, owned by the caller): the calling
// process is still root, Passwd was resolved from a successful PAM
// authentication, and the PAM session is already open.
func Spawn(ctx context.Context, p Params) (Result, error) {
	groups, err := supplementaryGroups(p.Passwd.Username, p.Passwd.Gid)
	if err != nil {
		return Result{}, &errs.SystemError{Op: "lookup supplementary groups", Err: err}
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-lc", p.Script)
	cmd.Dir = p.Passwd.Home
	cmd.Env = p.Environ
	cmd.SysProcAttr = &syscall.SysProcAttr{
		// The runtime applies these in the order setgroups, setresgid,
		// setresuid before execve, matching the mandated
		// initgroups → setgid → setuid ordering: populating Groups here
		// is the initgroups step, since Go's runtime does not call
		// initgroups(3) itself.
		Credential: &syscall.Credential{
			Uid:    uint32(p.Passwd.Uid),
			Gid:    uint32(p.Passwd.Gid),
			Groups: groups,
		},
	}

	var tty *os.File
	if p.TTYDevice != "" {
		tty, err = os.OpenFile(p.TTYDevice, os.O_RDWR, 0)
		if err != nil {
			return Result{}, &errs.SystemError{Op: "open controlling tty", Err: err}
		}
		defer tty.Close()

		cmd.Stdin = tty
		cmd.Stdout = tty
		cmd.Stderr = tty
		cmd.SysProcAttr.Setsid = true
		cmd.SysProcAttr.Setctty = true
	} else {
		cmd.Stdout = p.ClientLog
		cmd.Stderr = p.ClientLog
	}

	if err := cmd.Start(); err != nil {
		return Result{}, &errs.SessionExecFailed{Err: err}
	}
	if p.Started != nil {
		p.Started()
	}

	handle, err := p.UtmpWriter.LoginRecord(p.TTY, int32(cmd.Process.Pid), p.Passwd.Username)
	if err != nil {
		// Accounting failures never block the session itself.
		handle = utmpx.InvalidHandle()
	}

	waitErr := cmd.Wait()

	if logoutErr := p.UtmpWriter.LogoutRecord(handle); logoutErr != nil {
		// Also non-fatal; the session already ran to completion.
		_ = logoutErr
	}

	status := exitStatus(waitErr)
	if waitErr != nil && status < 0 {
		return Result{}, &errs.SessionExecFailed{Err: waitErr}
	}
	if status != 0 {
		return Result{ExitStatus: status}, &errs.SessionCrashed{Status: status}
	}
	return Result{ExitStatus: status}, nil
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return ws.ExitStatus()
		}
	}
	return -1
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

// supplementaryGroups resolves the full group-id list for username the
// way initgroups(3) would, so the caller can pass it to
// syscall.Credential.Groups before setgid/setuid run.
func supplementaryGroups(username string, primaryGid int) ([]uint32, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}
	ids, err := u.GroupIds()
	if err != nil {
		return nil, fmt.Errorf("lookup groups for %s: %w", username, err)
	}

	groups := make([]uint32, 0, len(ids)+1)
	seen := map[uint32]bool{uint32(primaryGid): true}
	groups = append(groups, uint32(primaryGid))
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		gid := uint32(n)
		if !seen[gid] {
			seen[gid] = true
			groups = append(groups, gid)
		}
	}
	return groups, nil
}
