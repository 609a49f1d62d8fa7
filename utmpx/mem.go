package utmpx

import "sync"

// Mem is an in-memory Writer for tests: it records every Record it was
// asked to write, in order, without touching the filesystem.
type Mem struct {
	mu      sync.Mutex
	Records []Record
	next    int64
}

func NewMem() *Mem { return &Mem{} }

func (m *Mem) LoginRecord(tty string, pid int32, user string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{Type: TypeUserProcess, Pid: pid, Line: tty, ID: IDFromLine(tty), User: user}
	m.Records = append(m.Records, rec)
	h := Handle{Line: rec.Line, ID: rec.ID, Pid: rec.Pid, slot: m.next}
	m.next++
	return h, nil
}

func (m *Mem) LogoutRecord(h Handle) error {
	if h.slot < 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Records = append(m.Records, Record{Type: TypeDeadProcess, Pid: h.Pid, Line: h.Line, ID: h.ID})
	return nil
}
