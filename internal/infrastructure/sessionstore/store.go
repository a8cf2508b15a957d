// Package sessionstore persists the signed-in session: an opaque token and
// the user profile blob, always written and cleared together.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Keys under which the two halves of a session are stored.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNoSession is returned by Load when no complete session is stored.
	ErrNoSession = errors.New("no stored session")
	// ErrIncomplete rejects a Save missing the token or the user.
	ErrIncomplete = errors.New("session requires both token and user")
)

type Session struct {
	Token string
	User  json.RawMessage
}

func (s Session) complete() bool {
	return s.Token != "" && len(s.User) > 0
}

// Store is implemented by every backend. Implementations are safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
	Close() error
}

// TokenSource exposes a Store's token to the ledger client. A missing
// session yields an empty token.
type TokenSource struct {
	Store Store
}

func (t TokenSource) Token(ctx context.Context) (string, error) {
	s, err := t.Store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Token, nil
}
