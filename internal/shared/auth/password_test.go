package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var fast = Passwords{Cost: bcrypt.MinCost}

func TestPasswords_HashAndVerify(t *testing.T) {
	hash, err := fast.Hash("my-secure-password")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if hash == "" || hash == "my-secure-password" {
		t.Fatalf("Hash() = %q", hash)
	}

	if err := fast.Verify(hash, "my-secure-password"); err != nil {
		t.Errorf("Verify() with correct password failed: %v", err)
	}
	if err := fast.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() with wrong password should fail")
	}
}

func TestPasswords_Salted(t *testing.T) {
	hash1, _ := fast.Hash("same-password")
	hash2, _ := fast.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for same password (no salt)")
	}
}

func TestPasswords_DefaultCost(t *testing.T) {
	var p Passwords
	if p.cost() != bcrypt.DefaultCost {
		t.Errorf("cost() = %d, want %d", p.cost(), bcrypt.DefaultCost)
	}
}
