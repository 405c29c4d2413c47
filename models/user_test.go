package models

import (
	"testing"
	"time"
)

func TestResetTokenValidity(t *testing.T) {
	var u User

	if u.ResetTokenValid("anything") {
		t.Error("user without a token should never validate")
	}

	token := u.IssueResetToken(time.Hour)
	if !u.ResetTokenValid(token) {
		t.Error("freshly issued token rejected")
	}
	if u.ResetTokenValid("some-other-token") {
		t.Error("mismatched token accepted")
	}

	expired := u.IssueResetToken(-time.Minute)
	if u.ResetTokenValid(expired) {
		t.Error("expired token accepted")
	}

	u.ClearResetToken()
	if u.ResetToken != nil || u.ResetTokenExpiresAt != nil {
		t.Error("ClearResetToken left token fields set")
	}
}
