package env

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LookupPasswd reads /etc/passwd directly for username. The standard
// library's os/user.User carries no Shell field, and PAM's own job ends
// at authentication, so the composer's Shell/Home/Uid/Gid inputs come
// from here instead.
func LookupPasswd(username string) (Passwd, error) {
	return lookupPasswdFile("/etc/passwd", username)
}

func lookupPasswdFile(path, username string) (Passwd, error) {
	f, err := os.Open(path)
	if err != nil {
		return Passwd{}, fmt.Errorf("env: open %s: %w", path, err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// name:passwd:uid:gid:gecos:home:shell
		fields := strings.Split(line, ":")
		if len(fields) != 7 || fields[0] != username {
			continue
		}

		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			return Passwd{}, fmt.Errorf("env: %s: bad uid for %s", path, username)
		}
		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			return Passwd{}, fmt.Errorf("env: %s: bad gid for %s", path, username)
		}

		return Passwd{
			Uid:      uid,
			Gid:      gid,
			Username: username,
			Home:     fields[5],
			Shell:    fields[6],
		}, nil
	}
	if err := s.Err(); err != nil {
		return Passwd{}, fmt.Errorf("env: scan %s: %w", path, err)
	}
	return Passwd{}, fmt.Errorf("env: no passwd entry for %s", username)
}
