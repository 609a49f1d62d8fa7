//go:build linux

package utmpx

import (
	"bytes"
	"encoding/binary"
	"os"
	"time"
)

// wireRecord mirrors the layout of struct utmpx as found on glibc-based
// Linux systems (utmpx.h): fixed-width fields, native endianness, no
// padding beyond what the field widths already imply.
type wireRecord struct {
	Type    int16
	_       [2]byte // alignment padding, matches the compiler-inserted gap before Pid
	Pid     int32
	Line    [32]byte
	ID      [4]byte
	User    [32]byte
	Host    [256]byte
	_       [4]byte // ut_exit: struct exit_status {e_termination, e_exit}
	Session int32
	Sec     int32
	Usec    int32
	_       [16]byte // ut_addr_v6
	_       [20]byte // __glibc_reserved
}

const wireRecordSize = 2 + 2 + 4 + 32 + 4 + 32 + 256 + 4 + 4 + 4 + 4 + 16 + 20

// FileWriter is the real UTMPX writer, appending/rewriting records in the
// system utmp file and appending a copy to the wtmp log.
type FileWriter struct {
	UtmpPath string
	WtmpPath string
}

// DefaultFileWriter points at the conventional Linux accounting paths.
func DefaultFileWriter() *FileWriter {
	return &FileWriter{UtmpPath: "/var/run/utmp", WtmpPath: "/var/log/wtmp"}
}

func encode(r Record) []byte {
	var w wireRecord
	w.Type = int16(r.Type)
	w.Pid = r.Pid
	copy(w.Line[:], r.Line)
	copy(w.ID[:], r.ID)
	copy(w.User[:], r.User)
	copy(w.Host[:], r.Host)
	w.Session = r.Session
	w.Sec = int32(r.Time.Unix())
	w.Usec = int32(r.Time.Nanosecond() / 1000)

	buf := new(bytes.Buffer)
	buf.Grow(wireRecordSize)
	_ = binary.Write(buf, binary.NativeEndian, &w)
	return buf.Bytes()
}

func (f *FileWriter) LoginRecord(tty string, pid int32, user string) (Handle, error) {
	rec := Record{
		Type: TypeUserProcess,
		Pid:  pid,
		Line: tty,
		ID:   IDFromLine(tty),
		User: user,
		Time: time.Now(),
	}
	payload := encode(rec)

	slot, err := appendRecord(f.UtmpPath, payload)
	if err != nil {
		return Handle{}, err
	}
	if err := appendOnly(f.WtmpPath, payload); err != nil {
		return Handle{}, err
	}

	return Handle{Line: rec.Line, ID: rec.ID, Pid: rec.Pid, slot: slot}, nil
}

func (f *FileWriter) LogoutRecord(h Handle) error {
	if h.slot < 0 {
		return nil
	}

	rec := Record{
		Type: TypeDeadProcess,
		Pid:  h.Pid,
		Line: h.Line,
		ID:   h.ID,
		Time: time.Now(),
	}
	payload := encode(rec)

	if err := rewriteAt(f.UtmpPath, h.slot, payload); err != nil {
		return err
	}
	return appendOnly(f.WtmpPath, payload)
}

func appendRecord(path string, payload []byte) (int64, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0664)
	if err != nil {
		return -1, err
	}
	defer file.Close()

	offset, err := file.Seek(0, os.SEEK_END)
	if err != nil {
		return -1, err
	}
	if _, err := file.Write(payload); err != nil {
		return -1, err
	}
	return offset, nil
}

func rewriteAt(path string, offset int64, payload []byte) error {
	file, err := os.OpenFile(path, os.O_RDWR, 0664)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteAt(payload, offset); err != nil {
		return err
	}
	return nil
}

func appendOnly(path string, payload []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0664)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.Write(payload)
	return err
}
