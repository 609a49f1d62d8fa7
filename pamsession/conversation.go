package pamsession

import (
	"context"
	"fmt"
	"time"

	"go.lemurs.sh/lemurs/errs"
)

// Conversation is the engine-side end of a PAM conversation. The driver
// answers the first ECHO_OFF exchange with the stored secret and the
// first ECHO_ON exchange with the stored username without involving the
// UI at all; any further prompt (a second factor, an expired-password
// change, a PAM module asking something unusual) is forwarded here.
type Conversation interface {
	// Prompt asks for a line of input, echoing it if echo is true, and
	// blocks until ctx is done or an answer arrives.
	Prompt(ctx context.Context, text string, echo bool) (string, error)
	// Info forwards a PAM_TEXT_INFO message.
	Info(text string)
	// Error forwards a PAM_ERROR_MSG message.
	Error(text string)
}

// convFunc builds the raw (Style, string) -> (string, error) function the
// adapter binds into pam.StartFunc. username and secret answer the first
// ECHO_ON/ECHO_OFF exchanges respectively; everything past that goes
// through conv, bounded by timeout.
func convFunc(ctx context.Context, username, secret string, conv Conversation, timeout time.Duration) func(Style, string) (string, error) {
	usedUsername := false
	usedSecret := false

	return func(style Style, msg string) (string, error) {
		switch style {
		case StyleEchoOn:
			if !usedUsername {
				usedUsername = true
				return username, nil
			}
			return promptBounded(ctx, conv, msg, true, timeout)
		case StyleEchoOff:
			if !usedSecret {
				usedSecret = true
				return secret, nil
			}
			return promptBounded(ctx, conv, msg, false, timeout)
		case StyleErrorMsg:
			conv.Error(msg)
			return "", nil
		case StyleTextInfo:
			conv.Info(msg)
			return "", nil
		default:
			return "", fmt.Errorf("pamsession: unrecognized conversation style %d", style)
		}
	}
}

func promptBounded(ctx context.Context, conv Conversation, msg string, echo bool, timeout time.Duration) (string, error) {
	cctx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	answer, err := conv.Prompt(cctx, msg, echo)
	if err != nil {
		if cctx.Err() != nil {
			return "", &errs.AuthTimeout{Step: "pam conversation"}
		}
		return "", err
	}
	return answer, nil
}
