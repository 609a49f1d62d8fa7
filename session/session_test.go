package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverSkipsNonExecutableAndStripsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "gnome.desktop"), 0755)
	writeFile(t, filepath.Join(dir, "notes.txt"), 0644)

	got, err := Discover(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1: %+v", len(got), got)
	}
	if got[0].Name != "gnome" || got[0].Kind != KindX11 {
		t.Errorf("got %+v", got[0])
	}
}

func TestDiscoverMissingDirIsNotFatal(t *testing.T) {
	got, err := Discover(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nope2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d descriptors, want 0", len(got))
	}
}

func TestDiscoverKeepsSameNameFromBothDirsIndependent(t *testing.T) {
	xdir, wdir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(xdir, "sway"), 0755)
	writeFile(t, filepath.Join(wdir, "sway"), 0755)

	got, err := Discover(xdir, wdir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d descriptors, want 2: %+v", len(got), got)
	}
}

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
}
