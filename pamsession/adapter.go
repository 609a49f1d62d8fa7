package pamsession

import (
	"context"
	"time"

	"github.com/msteinert/pam"
	"go.lemurs.sh/lemurs/errs"
)

// New starts a PAM transaction for service/username and returns a Driver
// bound to it. secret answers the first ECHO_OFF conversation exchange;
// username answers the first ECHO_ON exchange. Anything the PAM stack
// asks beyond that is routed through conv, each exchange bounded by
// timeout.
//
// Grounded on the msteinert/pam StartFunc conversation-callback pattern:
// the raw pam.Style/string callback is a thin shim over convFunc so the
// conversation logic above stays independent of the binding's types.
func New(ctx context.Context, service, username, secret string, conv Conversation, timeout time.Duration) (*Driver, error) {
	raw := convFunc(ctx, username, secret, conv, timeout)

	tx, err := pam.StartFunc(service, username, func(s pam.Style, msg string) (string, error) {
		return raw(mapStyle(s), msg)
	})
	if err != nil {
		return nil, &errs.PamError{Step: "start", Err: err}
	}
	return newDriver(&pamTransaction{tx: tx}), nil
}

func mapStyle(s pam.Style) Style {
	switch s {
	case pam.PromptEchoOff:
		return StyleEchoOff
	case pam.PromptEchoOn:
		return StyleEchoOn
	case pam.ErrorMsg:
		return StyleErrorMsg
	case pam.TextInfo:
		return StyleTextInfo
	default:
		return StyleUnknown
	}
}

// pamTransaction adapts *pam.Transaction to the Transaction interface the
// driver depends on.
type pamTransaction struct {
	tx *pam.Transaction
}

func (p *pamTransaction) Authenticate() error      { return p.tx.Authenticate(0) }
func (p *pamTransaction) AcctMgmt() error          { return p.tx.AcctMgmt(0) }
func (p *pamTransaction) SetCredEstablish() error  { return p.tx.SetCred(pam.EstablishCred) }
func (p *pamTransaction) SetCredDelete() error     { return p.tx.SetCred(pam.DeleteCred) }
func (p *pamTransaction) OpenSession() error       { return p.tx.OpenSession(0) }
func (p *pamTransaction) CloseSession() error      { return p.tx.CloseSession(0) }

// End has nothing to do: this binding tears the transaction down via a
// runtime finalizer rather than an explicit call. Kept as a method so the
// driver's always-call-End invariant holds uniformly across real and fake
// transactions.
func (p *pamTransaction) End() error { return nil }
