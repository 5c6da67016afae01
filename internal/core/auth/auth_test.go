package auth

import (
	"errors"
	"testing"
	"time"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "charity", TTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}
}

func TestIssuePairAndParse(t *testing.T) {
	j := newJWTer()
	pair, err := j.IssuePair("user-1")
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	c, err := j.Parse(pair.Access, TypeAccess)
	if err != nil {
		t.Fatalf("Parse(access) error: %v", err)
	}
	if c.UID != "user-1" {
		t.Fatalf("UID = %q, want user-1", c.UID)
	}
	if _, err := j.Parse(pair.Refresh, TypeRefresh); err != nil {
		t.Fatalf("Parse(refresh) error: %v", err)
	}
}

func TestParseRejectsSwappedTypes(t *testing.T) {
	j := newJWTer()
	pair, err := j.IssuePair("user-1")
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	if _, err := j.Parse(pair.Refresh, TypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("refresh as access: err = %v, want ErrWrongTokenType", err)
	}
	if _, err := j.Parse(pair.Access, TypeRefresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("access as refresh: err = %v, want ErrWrongTokenType", err)
	}
}

func TestParseRejectsExpiredAndForeign(t *testing.T) {
	j := newJWTer()
	issued := time.Now().Add(-2 * time.Hour)
	j.now = func() time.Time { return issued }
	tok, err := j.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	j.now = nil
	if _, err := j.Parse(tok, TypeAccess); err == nil {
		t.Fatal("expired token accepted")
	}

	other := &JWTer{Secret: []byte("other"), Issuer: "charity", TTL: time.Minute}
	tok, _ = other.Issue("user-1")
	if _, err := j.Parse(tok, TypeAccess); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := j.Parse("not-a-token", TypeAccess); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestResetTokens(t *testing.T) {
	r := &ResetTokens{Secret: []byte("reset-secret"), Issuer: "charity", TTL: time.Hour}
	tok, err := r.Make("user-1", "hash-a", "a@example.com")
	if err != nil {
		t.Fatalf("Make() error: %v", err)
	}

	tests := []struct {
		name  string
		uid   string
		hash  string
		email string
		ok    bool
	}{
		{"valid", "user-1", "hash-a", "a@example.com", true},
		{"other user", "user-2", "hash-a", "a@example.com", false},
		{"password changed", "user-1", "hash-b", "a@example.com", false},
		{"email changed", "user-1", "hash-a", "b@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Check(tok, tt.uid, tt.hash, tt.email)
			if tt.ok && err != nil {
				t.Fatalf("Check() error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidResetLink) {
				t.Fatalf("Check() error = %v, want ErrInvalidResetLink", err)
			}
		})
	}
}

func TestResetTokenExpires(t *testing.T) {
	r := &ResetTokens{Secret: []byte("reset-secret"), Issuer: "charity", TTL: time.Hour}
	start := time.Now()
	r.now = func() time.Time { return start }
	tok, err := r.Make("user-1", "h", "e")
	if err != nil {
		t.Fatalf("Make() error: %v", err)
	}
	r.now = func() time.Time { return start.Add(2 * time.Hour) }
	if err := r.Check(tok, "user-1", "h", "e"); !errors.Is(err, ErrInvalidResetLink) {
		t.Fatalf("Check() error = %v, want ErrInvalidResetLink", err)
	}
}

func TestAccessTokenIsNotAResetToken(t *testing.T) {
	j := &JWTer{Secret: []byte("same"), Issuer: "charity", TTL: time.Hour}
	r := &ResetTokens{Secret: []byte("same"), Issuer: "charity", TTL: time.Hour}
	tok, _ := j.Issue("user-1")
	if err := r.Check(tok, "user-1", "", ""); !errors.Is(err, ErrInvalidResetLink) {
		t.Fatalf("Check(access token) error = %v, want ErrInvalidResetLink", err)
	}
}

func TestUIDRoundTrip(t *testing.T) {
	id := "5f0c1c1e-7d0a-4b8e-9a4e-1c2f3d4e5f60"
	got, err := DecodeUID(EncodeUID(id))
	if err != nil || got != id {
		t.Fatalf("DecodeUID(EncodeUID(%q)) = %q, %v", id, got, err)
	}
	for _, bad := range []string{"", "!!!", "a b"} {
		if _, err := DecodeUID(bad); !errors.Is(err, ErrInvalidResetLink) {
			t.Errorf("DecodeUID(%q) error = %v, want ErrInvalidResetLink", bad, err)
		}
	}
}
