package xorg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.lemurs.sh/lemurs/errs"
)

// generateCookie returns 16 random bytes from the system CSPRNG,
// hex-encoded, suitable for installation as an MIT-MAGIC-COOKIE-1.
func generateCookie() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("xorg: read random cookie: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// xauthorityPath picks a per-session xauthority file location under
// runtimeDir. If runtimeDir is empty or unusable, it falls back to a
// uuid-named path under os.TempDir so two concurrent attempts never
// collide.
func xauthorityPath(runtimeDir string) string {
	if runtimeDir != "" {
		if st, err := os.Stat(runtimeDir); err == nil && st.IsDir() {
			return filepath.Join(runtimeDir, "lemurs.xauth")
		}
	}
	return filepath.Join(os.TempDir(), "lemurs-"+uuid.NewString()+".xauth")
}

// installCookie invokes `xauth -f path add :n MIT-MAGIC-COOKIE-1 hex`.
func installCookie(xauthBin, path string, displayNum int, hexCookie string) error {
	display := fmt.Sprintf(":%d", displayNum)
	cmd := exec.Command(xauthBin, "-f", path, "add", display, "MIT-MAGIC-COOKIE-1", hexCookie)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.XorgSpawnFailed{Err: fmt.Errorf("xauth add: %w: %s", err, out)}
	}
	return nil
}
