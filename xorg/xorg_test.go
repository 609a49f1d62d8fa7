package xorg

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateCookieIsHexOf16Bytes(t *testing.T) {
	cookie, err := generateCookie()
	if err != nil {
		t.Fatal(err)
	}
	raw, err := hex.DecodeString(cookie)
	if err != nil {
		t.Fatalf("cookie %q is not valid hex: %v", cookie, err)
	}
	if len(raw) != 16 {
		t.Errorf("cookie decodes to %d bytes, want 16", len(raw))
	}
}

func TestLockOwnedByPid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".X7-lock")
	if err := os.WriteFile(path, []byte("      12345\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if !lockOwnedByPid(path, 12345) {
		t.Error("expected lock to be owned by pid 12345")
	}
	if lockOwnedByPid(path, 1) {
		t.Error("did not expect lock to be owned by pid 1")
	}
}

func TestXauthorityPathFallsBackWhenRuntimeDirMissing(t *testing.T) {
	got := xauthorityPath(filepath.Join(t.TempDir(), "does-not-exist"))
	if filepath.Dir(got) != os.TempDir() {
		t.Errorf("xauthorityPath fallback = %q, want a path under %q", got, os.TempDir())
	}
}

func TestXauthorityPathUsesRuntimeDirWhenPresent(t *testing.T) {
	dir := t.TempDir()
	got := xauthorityPath(dir)
	if filepath.Dir(got) != dir {
		t.Errorf("xauthorityPath = %q, want under %q", got, dir)
	}
}
