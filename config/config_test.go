package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/pslog"
)

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured})
}

func TestSubstituteResolvesKnownPlaceholder(t *testing.T) {
	vars := map[string]string{"home": "/srv/lemurs"}
	got := substitute(`cache_path = "$home/cache"`, vars, testLogger())
	want := `cache_path = "/srv/lemurs/cache"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSubstituteLeavesUnknownPlaceholderVerbatim(t *testing.T) {
	got := substitute(`cache_path = "$unknown/cache"`, nil, testLogger())
	want := `cache_path = "$unknown/cache"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadDecodesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemurs.toml")
	contents := `pam_service = "$svc"` + "\n" + `display_probe_range = 32` + "\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, map[string]string{"svc": "lemurs-custom"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PamService != "lemurs-custom" {
		t.Errorf("PamService = %q, want lemurs-custom", cfg.PamService)
	}
	if cfg.DisplayProbeRange != 32 {
		t.Errorf("DisplayProbeRange = %d, want 32", cfg.DisplayProbeRange)
	}
	if cfg.XorgBinary != Default().XorgBinary {
		t.Errorf("XorgBinary = %q, want default preserved", cfg.XorgBinary)
	}
}
