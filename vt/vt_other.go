//go:build !linux

package vt

import (
	"fmt"

	"go.lemurs.sh/lemurs/errs"
)

// CurrentVT, SwitchTo, ChownTTY, and ResetTTY are Linux-specific VT ioctl
// operations; FreeBSD and NetBSD use a different syscon/keyboard API that
// is out of scope for this build.

func CurrentVT() (uint, error) {
	return 0, &errs.VtFailure{Op: "get_state", Err: errUnsupported}
}

func SwitchTo(uint) error {
	return &errs.VtFailure{Op: "activate", Err: errUnsupported}
}

func ChownTTY(string, int, int) error {
	return &errs.VtFailure{Op: "chown", Err: errUnsupported}
}

func ResetTTY(string) error {
	return &errs.VtFailure{Op: "reset_chown", Err: errUnsupported}
}

func TTYPath(n uint) string { return fmt.Sprintf("/dev/tty%d", n) }

var errUnsupported = fmt.Errorf("vt: unsupported on this platform")
