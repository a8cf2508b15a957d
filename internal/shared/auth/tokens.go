package auth

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"
)

const (
	// BearerPrefix precedes the JWT in the Authorization header.
	BearerPrefix = "Bearer "

	ClaimSubject  = "sub"
	ClaimUsername = "username"
)

// Tokens issues HS256 access tokens that jwtauth.Verifier accepts.
type Tokens struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		ja:  jwtauth.New("HS256", []byte(secret), nil),
		ttl: ttl,
		now: time.Now,
	}
}

// JWTAuth is the verifier side, for jwtauth.Verifier.
func (t *Tokens) JWTAuth() *jwtauth.JWTAuth {
	return t.ja
}

// Issue signs a token for uid and returns it ready for the Authorization
// header, "Bearer " included.
func (t *Tokens) Issue(uid, username string) (string, error) {
	now := t.now()
	_, token, err := t.ja.Encode(map[string]interface{}{
		ClaimSubject:  uid,
		ClaimUsername: username,
		"iat":         now.Unix(),
		"exp":         now.Add(t.ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return BearerPrefix + token, nil
}
