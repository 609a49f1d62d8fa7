package pamsession

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

// A PAM module stacked behind pam_unix (e.g. pam_google_authenticator)
// asks a second ECHO_OFF question after the password; §4.5 requires that
// exchange to go through the engine's Conversation rather than being
// answered from the stored secret. This generates a real TOTP code to
// stand in for that prompt/response.
func TestConvFuncRoutesOTPPromptThroughConversation(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "lemurs", AccountName: "alice"})
	if err != nil {
		t.Fatalf("generate TOTP key: %v", err)
	}
	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate TOTP code: %v", err)
	}

	conv := &fakeConversation{answer: code}
	f := convFunc(context.Background(), "alice", "hunter2", conv, 0)

	if _, err := f(StyleEchoOn, "login: "); err != nil {
		t.Fatalf("first ECHO_ON: %v", err)
	}
	if _, err := f(StyleEchoOff, "Password: "); err != nil {
		t.Fatalf("first ECHO_OFF: %v", err)
	}

	got, err := f(StyleEchoOff, "One-time code: ")
	if err != nil {
		t.Fatalf("second ECHO_OFF: %v", err)
	}
	if got != code {
		t.Fatalf("second ECHO_OFF = %q, want the generated TOTP code %q", got, code)
	}

	valid, err := totp.ValidateCustom(got, key.Secret(), time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    key.Digits(),
		Algorithm: key.Algorithm(),
	})
	if err != nil || !valid {
		t.Fatalf("generated code failed to validate against its own secret: valid=%v err=%v", valid, err)
	}
}
