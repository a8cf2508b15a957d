package sessionstore

import (
	"context"
	"fmt"

	"bankclient/internal/shared/config"
	"bankclient/internal/shared/crypto"
)

// Open builds the backend selected by cfg, wrapped in token encryption
// when an encryption key is configured.
func Open(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Store {
	case config.StoreFile:
		store = NewFileStore(cfg.FilePath)
	case config.StorePostgres:
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.StoreMongo:
		store, err = NewMongoStore(ctx, cfg.MongoURI)
	case config.StoreMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey == "" {
		return store, nil
	}

	enc, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		store.Close()
		return nil, err
	}
	return NewSealedStore(store, enc), nil
}
