package models

import "testing"

func TestValidEmbedCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"plain iframe", `<iframe src="https://www.youtube.com/embed/abc"></iframe>`, true},
		{"iframe with attributes and body", `<iframe width="560" height="315" allowfullscreen>fallback</iframe>`, true},
		{"uppercase tag", `<IFRAME src="x"></IFRAME>`, true},
		{"iframe wrapped in other markup", `<div><iframe src="x"></iframe></div>`, true},
		{"no iframe at all", `<p>hi</p>`, false},
		{"unclosed iframe", `<iframe src="x">`, false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Video{EmbedCode: tt.code}
			if got := v.HasValidEmbed(); got != tt.valid {
				t.Errorf("HasValidEmbed(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}

func TestUserPasswordRoundTrip(t *testing.T) {
	var u User
	if err := u.SetPassword("hunter22"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if u.PasswordHash == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if !u.CheckPassword("hunter22") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestFigureOwnsImage(t *testing.T) {
	f := Figure{Images: []Image{{ID: 3}, {ID: 9}}}
	if !f.OwnsImage(9) {
		t.Error("expected figure to own image 9")
	}
	if f.OwnsImage(4) {
		t.Error("figure should not own image 4")
	}
}
