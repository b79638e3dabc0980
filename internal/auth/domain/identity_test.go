package domain

import (
	"testing"

	"pgregory.net/rapid"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":   RoleAdmin,
		" Admin ": RoleAdmin,
		"member":  RoleMember,
		"intern":  RoleMember,
		"":        RoleMember,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserIdentity(t *testing.T) {
	u := &User{ID: "u1", Email: "Saurabh@Example.com", Role: "intern"}
	id := u.Identity()
	if id.ID != "u1" || id.Role != RoleMember || id.IsAdmin() {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.NormalizedEmail() != "saurabh@example.com" {
		t.Fatalf("unexpected normalized email %q", id.NormalizedEmail())
	}
}

func TestNormalizeEmailIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		email := rapid.StringMatching(`\s{0,2}[A-Za-z0-9.]{1,12}@[A-Za-z]{1,8}\.[A-Za-z]{2,3}\s{0,2}`).Draw(rt, "email")
		once := NormalizeEmail(email)
		if NormalizeEmail(once) != once {
			rt.Fatalf("NormalizeEmail not idempotent for %q", email)
		}
		if !SameEmail(email, once) {
			rt.Fatalf("SameEmail(%q, %q) = false", email, once)
		}
	})
}
