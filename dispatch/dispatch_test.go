package dispatch

import (
	"context"
	"io"
	"os"
	"os/exec"
	"os/user"
	"testing"

	"go.lemurs.sh/lemurs/env"
	"go.lemurs.sh/lemurs/utmpx"
)

func TestExitStatusFromRealProcess(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 3")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected a non-nil error for exit code 3")
	}
	if got := exitStatus(err); got != 3 {
		t.Errorf("exitStatus = %d, want 3", got)
	}
}

func TestExitStatusNilErrorIsZero(t *testing.T) {
	if got := exitStatus(nil); got != 0 {
		t.Errorf("exitStatus(nil) = %d, want 0", got)
	}
}

func TestSupplementaryGroupsIncludesPrimaryGid(t *testing.T) {
	// Use the current process's own user, which always resolves locally
	// regardless of the test environment's user database.
	me, err := user.Current()
	if err != nil {
		t.Skipf("cannot determine current user: %v", err)
	}

	groups, err := supplementaryGroups(me.Username, 0)
	if err != nil {
		t.Skipf("cannot resolve current user in this environment: %v", err)
	}
	found := false
	for _, g := range groups {
		if g == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("groups %v did not include the requested primary gid", groups)
	}
}

func TestSpawnCallsStartedOnceChildExecs(t *testing.T) {
	me, err := user.Current()
	if err != nil {
		t.Skipf("cannot determine current user: %v", err)
	}
	if _, err := user.Lookup(me.Username); err != nil {
		t.Skipf("cannot resolve current user in this environment: %v", err)
	}

	started := false
	_, _ = Spawn(context.Background(), Params{
		Passwd: env.Passwd{
			Username: me.Username,
			Uid:      os.Getuid(),
			Gid:      os.Getgid(),
			Home:     "/",
			Shell:    "/bin/sh",
		},
		Environ:    []string{"PATH=/usr/bin:/bin"},
		Script:     "exit 0",
		ClientLog:  io.Discard,
		UtmpWriter: utmpx.NewMem(),
		Started:    func() { started = true },
	})

	if !started {
		t.Error("expected Started to be called once the child exec'd")
	}
}
