// Package platform provides a narrow, mockable abstraction over the
// operating system primitives the engine depends on, following the
// teacher's internal/sys split between an interface and a single "Std"
// implementation backed by the standard library.
package platform

import (
	"io/fs"
	"os"
	"os/user"
)

// OS is the set of operating-system interactions the engine performs
// outside of the dedicated vt/utmpx/xorg/pamsession packages. Tests
// substitute a fake implementation so no real privilege or PAM stack is
// required to exercise the engine's control flow.
type OS interface {
	Getuid() int
	Getgid() int
	Environ() []string
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	LookupUser(username string) (*user.User, error)
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Hostname() (string, error)
}

// Std implements OS using the standard library.
type Std struct{}

func (Std) Getuid() int                          { return os.Getuid() }
func (Std) Getgid() int                          { return os.Getgid() }
func (Std) Environ() []string                    { return os.Environ() }
func (Std) LookupEnv(key string) (string, bool)  { return os.LookupEnv(key) }
func (Std) Setenv(key, value string) error       { return os.Setenv(key, value) }
func (Std) Unsetenv(key string) error            { return os.Unsetenv(key) }
func (Std) LookupUser(u string) (*user.User, error) { return user.Lookup(u) }
func (Std) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (Std) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (Std) Hostname() (string, error)            { return os.Hostname() }
