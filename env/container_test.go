package env_test

import (
	"io/fs"
	"os/user"
	"testing"

	"go.lemurs.sh/lemurs/env"
)

// fakeOS is an in-memory platform.OS sufficient to exercise Container.
type fakeOS struct {
	vars map[string]string
}

func newFakeOS(initial map[string]string) *fakeOS {
	f := &fakeOS{vars: make(map[string]string)}
	for k, v := range initial {
		f.vars[k] = v
	}
	return f
}

func (f *fakeOS) Getuid() int       { return 1000 }
func (f *fakeOS) Getgid() int       { return 1000 }
func (f *fakeOS) Environ() []string { return nil }
func (f *fakeOS) LookupEnv(key string) (string, bool) {
	v, ok := f.vars[key]
	return v, ok
}
func (f *fakeOS) Setenv(key, value string) error {
	f.vars[key] = value
	return nil
}
func (f *fakeOS) Unsetenv(key string) error {
	delete(f.vars, key)
	return nil
}
func (f *fakeOS) LookupUser(string) (*user.User, error)        { return nil, fs.ErrNotExist }
func (f *fakeOS) Stat(string) (fs.FileInfo, error)              { return nil, fs.ErrNotExist }
func (f *fakeOS) ReadDir(string) ([]fs.DirEntry, error)          { return nil, fs.ErrNotExist }
func (f *fakeOS) Hostname() (string, error)                     { return "host", nil }

func snapshotEqual(t *testing.T, before, after map[string]string) {
	t.Helper()
	if len(before) != len(after) {
		t.Fatalf("length mismatch: before=%v after=%v", before, after)
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("key %q: before=%q after=%q", k, v, after[k])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	os := newFakeOS(map[string]string{"HOME": "/root", "PATH": "/bin"})
	before := make(map[string]string, len(os.vars))
	for k, v := range os.vars {
		before[k] = v
	}

	c := env.New(os)
	c.Snapshot()

	if err := c.Set("HOME", "/home/alice"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("DISPLAY", ":0"); err != nil {
		t.Fatal(err)
	}
	if err := c.Unset("PATH"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetIfUnset("HOME", "/should/not/apply"); err != nil {
		t.Fatal(err)
	}

	if err := c.Restore(); err != nil {
		t.Fatal(err)
	}

	snapshotEqual(t, before, os.vars)
}

func TestRestoreIdempotent(t *testing.T) {
	os := newFakeOS(map[string]string{"HOME": "/root"})
	c := env.New(os)
	c.Snapshot()

	if err := c.Set("HOME", "/home/alice"); err != nil {
		t.Fatal(err)
	}
	if err := c.Restore(); err != nil {
		t.Fatal(err)
	}
	if got := os.vars["HOME"]; got != "/root" {
		t.Fatalf("HOME after first restore = %q", got)
	}

	// mutate again after restore; second Restore must not touch it
	os.vars["HOME"] = "/mutated/externally"
	if err := c.Restore(); err != nil {
		t.Fatal(err)
	}
	if got := os.vars["HOME"]; got != "/mutated/externally" {
		t.Fatalf("second Restore() was not a no-op, HOME = %q", got)
	}
}

func TestSetIfUnsetOnlyChecksLiveValue(t *testing.T) {
	os := newFakeOS(map[string]string{})
	c := env.New(os)
	c.Snapshot()

	if err := c.Set("XDG_SEAT", "seat0"); err != nil {
		t.Fatal(err)
	}
	// live value is now set; SetIfUnset must not clobber it even though
	// the pre-snapshot value was unset.
	if err := c.SetIfUnset("XDG_SEAT", "seat1"); err != nil {
		t.Fatal(err)
	}
	if got := os.vars["XDG_SEAT"]; got != "seat0" {
		t.Fatalf("XDG_SEAT = %q, want seat0", got)
	}
}
