// Package pamsession drives the PAM session state machine (§4.5):
//
//	start → authenticate → acct_mgmt → setcred(establish) → open_session
//	  → [run] → close_session → setcred(delete) → end
//
// Every successful setcred(establish) is matched by exactly one
// setcred(delete); every successful open_session is matched by exactly one
// close_session; end is always called, regardless of which step failed.
package pamsession

import (
	"sync"

	"go.lemurs.sh/lemurs/errs"
)

// Style mirrors the PAM conversation message styles (§4.5), kept as our
// own small enum so the conversation logic in this package does not
// depend directly on the msteinert/pam binding's types.
type Style int

const (
	StyleUnknown Style = iota
	StyleEchoOff
	StyleEchoOn
	StyleErrorMsg
	StyleTextInfo
)

// Transaction is the subset of a PAM transaction's behavior the driver
// depends on. The real implementation wraps github.com/msteinert/pam
// (adapter.go); tests use a fake to verify the symmetry invariants in
// §8 without linking against libpam.
type Transaction interface {
	Authenticate() error
	AcctMgmt() error
	SetCredEstablish() error
	SetCredDelete() error
	OpenSession() error
	CloseSession() error
	End() error
}

// Driver orchestrates one login attempt's PAM transaction. A Driver must
// be used by a single goroutine and is scoped to exactly one attempt.
type Driver struct {
	tx Transaction

	mu              sync.Mutex
	authenticated   bool
	acctOK          bool
	credEstablished bool
	sessionOpen     bool
	ended           bool
}

func newDriver(tx Transaction) *Driver { return &Driver{tx: tx} }

// Authenticate runs the PAM authenticate step.
func (d *Driver) Authenticate() error {
	if err := d.tx.Authenticate(); err != nil {
		return &errs.AuthFailed{Err: err}
	}
	d.authenticated = true
	return nil
}

// AcctMgmt runs PAM account management; it must follow a successful
// Authenticate.
func (d *Driver) AcctMgmt() error {
	if err := d.tx.AcctMgmt(); err != nil {
		return &errs.AccountLocked{Err: err}
	}
	d.acctOK = true
	return nil
}

// EstablishCreds runs setcred(PAM_ESTABLISH_CRED). On success the driver
// remembers it owes a matching DeleteCreds.
func (d *Driver) EstablishCreds() error {
	if err := d.tx.SetCredEstablish(); err != nil {
		return &errs.PamError{Step: "setcred(establish)", Err: err}
	}
	d.credEstablished = true
	return nil
}

// OpenSession runs PAM open_session. On success the driver remembers it
// owes a matching CloseSession.
func (d *Driver) OpenSession() error {
	if err := d.tx.OpenSession(); err != nil {
		return &errs.PamError{Step: "open_session", Err: err}
	}
	d.sessionOpen = true
	return nil
}

// CloseSession runs PAM close_session, but only if OpenSession previously
// succeeded. Safe to call multiple times.
func (d *Driver) CloseSession() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.sessionOpen {
		return nil
	}
	err := d.tx.CloseSession()
	d.sessionOpen = false
	if err != nil {
		return &errs.PamError{Step: "close_session", Err: err}
	}
	return nil
}

// DeleteCreds runs setcred(PAM_DELETE_CRED), but only if EstablishCreds
// previously succeeded. Safe to call multiple times.
func (d *Driver) DeleteCreds() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.credEstablished {
		return nil
	}
	err := d.tx.SetCredDelete()
	d.credEstablished = false
	if err != nil {
		return &errs.PamError{Step: "setcred(delete)", Err: err}
	}
	return nil
}

// End runs the PAM end step exactly once, regardless of how many times
// End is called.
func (d *Driver) End() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ended {
		return nil
	}
	d.ended = true
	if err := d.tx.End(); err != nil {
		return &errs.PamError{Step: "end", Err: err}
	}
	return nil
}

// Close runs the full reverse sequence — CloseSession, DeleteCreds, End —
// collecting but not short-circuiting on individual failures. Close is
// idempotent: each underlying step already guards against being run
// twice, so calling Close more than once (e.g. once explicitly and once
// via a deferred teardown.Op) is safe.
func (d *Driver) Close() error {
	var errsList []error
	if err := d.CloseSession(); err != nil {
		errsList = append(errsList, err)
	}
	if err := d.DeleteCreds(); err != nil {
		errsList = append(errsList, err)
	}
	if err := d.End(); err != nil {
		errsList = append(errsList, err)
	}
	return joinErrs(errsList)
}

func joinErrs(errsList []error) error {
	switch len(errsList) {
	case 0:
		return nil
	case 1:
		return errsList[0]
	default:
		msg := errsList[0].Error()
		for _, e := range errsList[1:] {
			msg += "; " + e.Error()
		}
		return &errs.PamError{Step: "close", Err: errFromMessage(msg)}
	}
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func errFromMessage(msg string) error { return simpleError(msg) }
