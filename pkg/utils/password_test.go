package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if h == "s3cret-pass" {
		t.Fatalf("hash must not equal the plain password")
	}
	if !CheckPassword("s3cret-pass", h) {
		t.Fatalf("CheckPassword() = false for the right password")
	}
	if CheckPassword("other-pass", h) {
		t.Fatalf("CheckPassword() = true for the wrong password")
	}
}

func TestShortRef(t *testing.T) {
	ref := ShortRef()
	if len(ref) != 8 {
		t.Fatalf("len(ShortRef()) = %d, want 8", len(ref))
	}
	if ref != strings.ToUpper(ref) {
		t.Fatalf("ShortRef() = %q, want upper case", ref)
	}
}
