// Package env implements the process environment container (§4.2) and the
// XDG/base-env composer (§4.3) that runs on top of it.
package env

import (
	"go.lemurs.sh/lemurs/internal/platform"
)

// Container snapshots the process environment, tracks every mutation made
// through Set/Unset, and can restore exactly the pre-snapshot state.
// Restore is idempotent; a second call after the first is a no-op.
//
// Container is not safe for concurrent use — the spec confines all
// mutation to the engine thread.
type Container struct {
	os platform.OS

	// original holds, for every name this Container has touched, the
	// value it had before the first touch. ok is false when the name
	// was unset before the first touch.
	original map[string]originalValue
	restored bool
}

type originalValue struct {
	value string
	ok    bool
}

// New returns a Container bound to os. Call Snapshot before any mutation.
func New(os platform.OS) *Container {
	return &Container{os: os, original: make(map[string]originalValue)}
}

// Snapshot records the Container as freshly created; present for symmetry
// with the spec's vocabulary and to allow re-arming a Container for reuse
// across attempts.
func (c *Container) Snapshot() {
	c.original = make(map[string]originalValue)
	c.restored = false
}

func (c *Container) remember(key string) {
	if _, seen := c.original[key]; seen {
		return
	}
	v, ok := c.os.LookupEnv(key)
	c.original[key] = originalValue{value: v, ok: ok}
}

// Set assigns key=value in the live process environment, recording the
// pre-mutation value on first touch.
func (c *Container) Set(key, value string) error {
	c.remember(key)
	return c.os.Setenv(key, value)
}

// SetIfUnset assigns key=value only when key is not currently set,
// implementing the "only if unset" rule used throughout §4.3.
func (c *Container) SetIfUnset(key, value string) error {
	if _, ok := c.os.LookupEnv(key); ok {
		return nil
	}
	return c.Set(key, value)
}

// Unset removes key from the live process environment, recording the
// pre-mutation value on first touch.
func (c *Container) Unset(key string) error {
	c.remember(key)
	return c.os.Unsetenv(key)
}

// Restore reinstates every recorded original value, setting previously
// unset names back to unset. Restore is idempotent.
func (c *Container) Restore() error {
	if c.restored {
		return nil
	}
	c.restored = true

	var first error
	for key, orig := range c.original {
		var err error
		if orig.ok {
			err = c.os.Setenv(key, orig.value)
		} else {
			err = c.os.Unsetenv(key)
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
