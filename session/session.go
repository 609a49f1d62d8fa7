// Package session discovers the set of login session descriptors
// offered to the UI (§4.11): X11/Wayland entries scanned from
// executable files in two directories, plus one synthesized TTY entry
// resolved per attempt.
package session

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies the session type a Descriptor launches.
type Kind int

const (
	KindX11 Kind = iota
	KindWayland
	KindTTY
)

func (k Kind) String() string {
	switch k {
	case KindX11:
		return "x11"
	case KindWayland:
		return "wayland"
	default:
		return "tty"
	}
}

// Descriptor is one entry the UI can offer to switch to.
type Descriptor struct {
	Name           string
	Kind           Kind
	ExecutablePath string
}

// Discover scans xsessionsDir and wlsessionsDir for regular, executable
// files and returns one Descriptor per file, named after the file with
// its extension stripped. A missing directory contributes zero
// descriptors rather than an error. The TTY entry is not synthesized
// here: it depends on the authenticated passwd entry's login shell,
// resolved at attempt time instead.
func Discover(xsessionsDir, wlsessionsDir string) ([]Descriptor, error) {
	var out []Descriptor

	x, err := scanDir(xsessionsDir, KindX11)
	if err != nil {
		return nil, err
	}
	out = append(out, x...)

	w, err := scanDir(wlsessionsDir, KindWayland)
	if err != nil {
		return nil, err
	}
	out = append(out, w...)

	return out, nil
}

func scanDir(dir string, kind Kind) ([]Descriptor, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Descriptor
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if info.Mode()&0111 == 0 {
			continue
		}

		name := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		out = append(out, Descriptor{
			Name:           name,
			Kind:           kind,
			ExecutablePath: filepath.Join(dir, ent.Name()),
		})
	}
	return out, nil
}

// TTYDescriptor synthesizes the implicit shell-login entry for shell,
// resolved at attempt time against the authenticated user's login shell.
func TTYDescriptor(shell string) Descriptor {
	return Descriptor{Name: "tty", Kind: KindTTY, ExecutablePath: shell}
}
