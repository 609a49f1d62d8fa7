package vt

import "testing"

func TestTTYPath(t *testing.T) {
	if got, want := TTYPath(2), "/dev/tty2"; got != want {
		t.Errorf("TTYPath(2) = %q, want %q", got, want)
	}
}
