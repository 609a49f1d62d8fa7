//go:build linux

// Package vt implements VT/TTY control (§4.1): querying and switching the
// active virtual terminal, and transferring/restoring ownership of the
// TTY device file across the login boundary.
package vt

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"go.lemurs.sh/lemurs/errs"
)

// VT ioctl numbers from linux/vt.h. x/sys/unix does not export these, so
// they are reproduced here the way the kernel UAPI header defines them:
// plain constants, not the computed _IOW encoding other ioctl families use.
const (
	vtActivate   = 0x5606
	vtWaitActive = 0x5607
	vtGetState   = 0x5603
)

// vtStat mirrors struct vt_stat from linux/vt.h.
type vtStat struct {
	Active uint16
	Signal uint16
	State  uint16
}

// consolePath is opened to issue VT ioctls; any VT-associated fd works.
const consolePath = "/dev/tty0"

func withConsole(f func(fd int) error) error {
	c, err := os.OpenFile(consolePath, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer c.Close()
	return f(int(c.Fd()))
}

// CurrentVT returns the number of the currently active virtual terminal.
func CurrentVT() (uint, error) {
	var st vtStat
	err := withConsole(func(fd int) error {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), vtGetState, uintptr(unsafe.Pointer(&st)))
		if errno != 0 {
			return errno
		}
		return nil
	})
	if err != nil {
		return 0, &errs.VtFailure{Op: "get_state", Err: err}
	}
	return uint(st.Active), nil
}

// SwitchTo activates vt and blocks until the switch completes.
func SwitchTo(vtNum uint) error {
	err := withConsole(func(fd int) error {
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), vtActivate, uintptr(vtNum)); errno != 0 {
			return errno
		}
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), vtWaitActive, uintptr(vtNum)); errno != 0 {
			return errno
		}
		return nil
	})
	if err != nil {
		return &errs.VtFailure{Op: "activate", Err: err}
	}
	return nil
}

// ChownTTY transfers ownership of ttyPath to uid:gid, used at session
// start to hand the controlling terminal to the logging-in user.
func ChownTTY(ttyPath string, uid, gid int) error {
	if err := unix.Chown(ttyPath, uid, gid); err != nil {
		return &errs.VtFailure{Op: "chown", Err: err}
	}
	return nil
}

// ResetTTY returns ttyPath to root ownership with the conventional
// getty-managed mode, used on teardown. Failure is surfaced but never
// fatal — the engine continues cleanup.
func ResetTTY(ttyPath string) error {
	if err := unix.Chown(ttyPath, 0, 0); err != nil {
		return &errs.VtFailure{Op: "reset_chown", Err: err}
	}
	if err := os.Chmod(ttyPath, 0620); err != nil {
		return &errs.VtFailure{Op: "reset_chmod", Err: err}
	}
	return nil
}

// TTYPath returns the conventional device path for VT number n.
func TTYPath(n uint) string { return fmt.Sprintf("/dev/tty%d", n) }
