package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and checks user passwords with bcrypt. The zero value
// uses bcrypt.DefaultCost.
type Passwords struct {
	Cost int
}

func (p Passwords) cost() int {
	if p.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return p.Cost
}

// Hash returns the bcrypt hash of password.
func (p Passwords) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify returns nil when password matches hash.
func (p Passwords) Verify(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
