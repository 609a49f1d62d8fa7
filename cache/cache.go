// Package cache persists the last session name and username across runs
// (§4.9), so the UI can pre-populate both fields.
package cache

import (
	"bufio"
	"os"
	"strings"
)

// Info is the small amount of state remembered between runs.
type Info struct {
	SessionName string
	Username    string
}

// Load reads path's two lines (session name, username). A missing file
// is not an error; it simply yields a zero Info.
func Load(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, nil
		}
		return Info{}, err
	}
	defer f.Close()

	lines := make([]string, 0, 2)
	s := bufio.NewScanner(f)
	for s.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(s.Text()))
	}
	if err := s.Err(); err != nil {
		return Info{}, err
	}

	var info Info
	if len(lines) > 0 {
		info.SessionName = lines[0]
	}
	if len(lines) > 1 {
		info.Username = lines[1]
	}
	return info, nil
}

// Save writes info to path, truncating any previous contents. Save is
// called only after the session dispatcher has successfully exec'd the
// child, never merely on PAM success.
func Save(path string, info Info) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(info.SessionName + "\n" + info.Username + "\n")
	return err
}
