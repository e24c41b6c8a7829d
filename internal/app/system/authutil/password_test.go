package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "correct horse battery", nil},
		{"minimum length", "eight888", nil},
		{"too short", "short1", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", 129), ErrPasswordTooLong},
		{"common", "password", ErrPasswordCommon},
		{"common mixed case", "PassWord", ErrPasswordCommon},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := ValidatePassword(c.password); err != c.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", c.password, err, c.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "a-strong-enough-password"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == password {
		t.Fatal("hash must not equal the plain password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword(password, "not-a-bcrypt-hash") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, _ := HashPassword("same-password-123")
	b, _ := HashPassword("same-password-123")
	if a == b {
		t.Error("two hashes of the same password are identical (missing salt?)")
	}
}
