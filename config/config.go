// Package config loads the engine's TOML configuration (§4.12),
// substituting $name placeholders from a flat key/value variables file
// before decoding.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml/v2"
	"pkt.systems/pslog"
)

// Config is the engine's runtime configuration (§3 "Engine
// configuration").
type Config struct {
	PamService        string        `toml:"pam_service"`
	XsessionsDir       string        `toml:"xsessions_dir"`
	WlsessionsDir      string        `toml:"wlsessions_dir"`
	PathEnv            string        `toml:"path_env"`
	XorgBinary         string        `toml:"xorg_binary"`
	XauthBinary        string        `toml:"xauth_binary"`
	DisplayProbeRange  int           `toml:"display_probe_range"`
	XorgReadyTimeout   time.Duration `toml:"xorg_ready_timeout"`
	InputTimeout       time.Duration `toml:"input_timeout"`
	CachePath          string        `toml:"cache_path"`
	LogDir             string        `toml:"log_dir"`
	Preview            bool          `toml:"preview"`
}

// Default returns the built-in defaults, applied before a config file is
// loaded over them.
func Default() Config {
	return Config{
		PamService:        "lemurs",
		XsessionsDir:       "/usr/share/xsessions",
		WlsessionsDir:      "/usr/share/wayland-sessions",
		PathEnv:            "/usr/local/sbin:/usr/local/bin:/usr/bin",
		XorgBinary:         "/usr/bin/X",
		XauthBinary:        "/usr/bin/xauth",
		DisplayProbeRange:  64,
		XorgReadyTimeout:   10 * time.Second,
		InputTimeout:       60 * time.Second,
		CachePath:          "/var/cache/lemurs",
		LogDir:             "/var/log",
	}
}

var placeholder = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// LoadVariables reads a flat TOML key/value file used to resolve $name
// placeholders in the primary config.
func LoadVariables(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read variables: %w", err)
	}
	vars := make(map[string]string)
	if err := toml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("config: parse variables: %w", err)
	}
	return vars, nil
}

// Load reads the primary TOML config at path, substitutes $name
// placeholders from vars, and decodes the result over Default(). An
// unresolved placeholder is left verbatim and logged at warn level
// through log, never treated as fatal.
func Load(path string, vars map[string]string, log pslog.Logger) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	substituted := substitute(string(data), vars, log)

	cfg := Default()
	if err := toml.Unmarshal([]byte(substituted), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func substitute(raw string, vars map[string]string, log pslog.Logger) string {
	return placeholder.ReplaceAllStringFunc(raw, func(match string) string {
		name := match[1:]
		if v, ok := vars[name]; ok {
			return v
		}
		log.Warn("unresolved config placeholder", "placeholder", match)
		return match
	})
}
