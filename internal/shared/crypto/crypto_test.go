package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "01234567890123456789012345678901"

func TestNewEncryptor_ValidSecret(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}
	if enc == nil {
		t.Fatal("NewEncryptor() returned nil")
	}
}

func TestNewEncryptor_ShortSecret(t *testing.T) {
	tests := []string{"", "too-short", "fifteen-bytes!!"}
	for _, secret := range tests {
		_, err := NewEncryptor(secret)
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("NewEncryptor(%q) error = %v, want %v", secret, err, ErrInvalidKey)
		}
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	plaintext := "Bearer eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhbGljZSJ9.sig"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if ciphertext == plaintext {
		t.Error("Encrypt() returned plaintext")
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptDecrypt_EmptyString(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	ciphertext, err := enc.Encrypt("")
	if err != nil || ciphertext != "" {
		t.Errorf("Encrypt(\"\") = %q, %v; want empty, nil", ciphertext, err)
	}

	plaintext, err := enc.Decrypt("")
	if err != nil || plaintext != "" {
		t.Errorf("Decrypt(\"\") = %q, %v; want empty, nil", plaintext, err)
	}
}

func TestEncrypt_DifferentCiphertexts(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	c1, _ := enc.Encrypt("same token")
	c2, _ := enc.Encrypt("same token")

	if c1 == c2 {
		t.Error("Encrypt() produced identical ciphertexts for same plaintext (nonce should differ)")
	}
}

func TestDecrypt_Rejects(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)
	other, _ := NewEncryptor("98765432109876543210987654321098")

	ciphertext, _ := enc.Encrypt("secret token")
	tampered := ciphertext[:len(ciphertext)-2] + "XX"
	foreign, _ := other.Encrypt("secret token")

	tests := []struct {
		name  string
		input string
	}{
		{"tampered", tampered},
		{"invalid base64", "not-valid-base64!!!"},
		{"shorter than nonce", "YQ=="},
		{"wrong key", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decrypt(tt.input); err == nil {
				t.Errorf("Decrypt() accepted %s ciphertext", tt.name)
			}
		})
	}
}

func TestDecrypt_TooShortIsTyped(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	_, err := enc.Decrypt("YQ==")
	if !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrCiphertextTooShort)
	}
}

func TestEncryptDecrypt_LongContent(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	plaintext := strings.Repeat("long token ", 1000)
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() failed with long content: %v", err)
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() failed with long content: %v", err)
	}
	if decrypted != plaintext {
		t.Error("Long content roundtrip failed")
	}
}
