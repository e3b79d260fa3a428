package user

import "testing"

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(h, "secret1") {
		t.Fatal("expected match")
	}
	if CheckPassword(h, "secret2") {
		t.Fatal("expected mismatch")
	}
}
