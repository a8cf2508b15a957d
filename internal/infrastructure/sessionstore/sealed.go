package sessionstore

import (
	"context"
	"fmt"
)

// Sealer encrypts the token at rest. *crypto.Encryptor satisfies it.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SealedStore encrypts the token before handing the session to the wrapped
// backend. The user blob is stored as is.
type SealedStore struct {
	Store
	sealer Sealer
}

var _ Store = (*SealedStore)(nil)

func NewSealedStore(store Store, sealer Sealer) *SealedStore {
	return &SealedStore{Store: store, sealer: sealer}
}

func (s *SealedStore) Save(ctx context.Context, sess Session) error {
	if !sess.complete() {
		return ErrIncomplete
	}
	token, err := s.sealer.Encrypt(sess.Token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return s.Store.Save(ctx, Session{Token: token, User: sess.User})
}

func (s *SealedStore) Load(ctx context.Context) (*Session, error) {
	sess, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.sealer.Decrypt(sess.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	return &Session{Token: token, User: sess.User}, nil
}
