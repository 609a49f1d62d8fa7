// Package teardown provides a scoped ledger of reversible operations.
//
// An Attempt acquires resources in order — VT ownership, environment
// mutations, a UTMPX record, a PAM session, an Xorg handle — and every one
// of them must be released in strict reverse order on every exit path,
// including a panic partway through launch. A Ledger records that an
// acquisition happened and how to undo it; Unwind walks the record backwards
// exactly once.
package teardown

import (
	"errors"
	"fmt"
	"sync"
)

// Op is a single reversible operation already applied by the caller.
// Revert undoes it. Revert must be safe to call even if the original
// acquisition partially failed.
type Op interface {
	Revert() error
	String() string
}

type funcOp struct {
	name   string
	revert func() error
}

func (f *funcOp) Revert() error { return f.revert() }
func (f *funcOp) String() string { return f.name }

// Func wraps a plain revert closure as an Op.
func Func(name string, revert func() error) Op {
	if revert == nil {
		panic("teardown: nil revert func")
	}
	return &funcOp{name: name, revert: revert}
}

// A Ledger accumulates Op values as an attempt acquires resources and
// unwinds them in reverse acquisition order exactly once.
//
// Ledger must not be copied after first use.
type Ledger struct {
	mu      sync.Mutex
	ops     []Op
	unwound bool
}

// Push records that op's acquisition succeeded. Push must not be called
// after Unwind.
func (l *Ledger) Push(op Op) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unwound {
		panic("teardown: Push after Unwind")
	}
	l.ops = append(l.ops, op)
}

// Len reports how many ops are currently recorded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ops)
}

// Unwind reverts every recorded Op in reverse order, collecting but not
// stopping on individual failures. Calling Unwind more than once is a
// no-op; it is meant to be deferred unconditionally at the top of the
// per-attempt function so a panic still tears down acquired resources.
func (l *Ledger) Unwind() error {
	l.mu.Lock()
	if l.unwound {
		l.mu.Unlock()
		return nil
	}
	l.unwound = true
	ops := l.ops
	l.ops = nil
	l.mu.Unlock()

	errs := make([]error, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		if err := ops[i].Revert(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ops[i], err))
		}
	}
	return errors.Join(errs...)
}
