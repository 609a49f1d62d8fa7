// Package utmpx implements the UTMPX accounting record lifecycle (§4.4):
// one USER_PROCESS record at session start, rewritten in place as a
// DEAD_PROCESS record with matching line/id/pid on exit.
package utmpx

import "time"

// RecordType mirrors the ut_type values used by USER_PROCESS/DEAD_PROCESS
// entries.
type RecordType int16

const (
	TypeUserProcess RecordType = 7
	TypeDeadProcess RecordType = 8
)

// Record is the subset of utmpx fields the engine writes (§3).
type Record struct {
	Type    RecordType
	Pid     int32
	Line    string // TTY name, e.g. "tty2"
	ID      string // trailing 4 characters of Line
	User    string
	Host    string
	Session int32
	Time    time.Time
}

// IDFromLine derives the utmpx "id" field: the trailing 4 characters of
// the TTY name, per §4.4.
func IDFromLine(line string) string {
	if len(line) <= 4 {
		return line
	}
	return line[len(line)-4:]
}

// Handle identifies the on-disk slot a USER_PROCESS record was written to,
// so LogoutRecord can rewrite exactly that slot.
type Handle struct {
	Line string
	ID   string
	Pid  int32

	slot int64 // byte offset in the backing file; -1 means "nothing to log out"
}

// InvalidHandle returns a Handle that LogoutRecord treats as a no-op. Use
// it when LoginRecord itself failed, so there is no USER_PROCESS record
// to balance with a DEAD_PROCESS one.
func InvalidHandle() Handle { return Handle{slot: -1} }

// Writer is the injectable UTMPX accounting interface; a real
// implementation touches /var/run/utmp and /var/log/wtmp, a fake one
// records calls in memory for tests.
type Writer interface {
	// LoginRecord writes a USER_PROCESS entry for the given tty/pid/user.
	LoginRecord(tty string, pid int32, user string) (Handle, error)
	// LogoutRecord rewrites handle's slot as a DEAD_PROCESS entry,
	// preserving Line/ID/Pid, with Time set to now.
	LogoutRecord(handle Handle) error
}
