package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bankclient/internal/shared/config"
	"bankclient/internal/shared/crypto"
)

var testUser = json.RawMessage(`{"uid":"u-1","username":"alice"}`)

// runStoreContract exercises the behavior every backend shares.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() on empty store failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load() on empty store error = %v, want %v", err, ErrNoSession)
	}

	if err := store.Save(ctx, Session{Token: "Bearer t1"}); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Save() without user error = %v, want %v", err, ErrIncomplete)
	}
	if err := store.Save(ctx, Session{User: testUser}); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Save() without token error = %v, want %v", err, ErrIncomplete)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("rejected Save() left a session behind: %v", err)
	}

	if err := store.Save(ctx, Session{Token: "Bearer t1", User: testUser}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Token != "Bearer t1" {
		t.Errorf("Token = %q, want %q", got.Token, "Bearer t1")
	}
	if !jsonEqual(got.User, testUser) {
		t.Errorf("User = %s, want %s", got.User, testUser)
	}

	if err := store.Save(ctx, Session{Token: "Bearer t2", User: json.RawMessage(`{"username":"bob"}`)}); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Token != "Bearer t2" || !strings.Contains(string(got.User), "bob") {
		t.Errorf("session not replaced wholesale: %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() after Clear() error = %v, want %v", err, ErrNoSession)
	}
}

func jsonEqual(a, b json.RawMessage) bool {
	var x, y any
	if json.Unmarshal(a, &x) != nil || json.Unmarshal(b, &y) != nil {
		return false
	}
	xb, _ := json.Marshal(x)
	yb, _ := json.Marshal(y)
	return string(xb) == string(yb)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	runStoreContract(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")))
}

func TestFileStore_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(context.Background(), Session{Token: "Bearer t1", User: testUser}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("session file is not JSON: %v", err)
	}
	if _, ok := doc[KeyToken]; !ok {
		t.Errorf("missing %q key in %s", KeyToken, data)
	}
	if _, ok := doc[KeyUser]; !ok {
		t.Errorf("missing %q key in %s", KeyUser, data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("session file mode = %v, want owner-only", perm)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFileStore_HalfPresentIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"token only", `{"token":"Bearer t1"}`},
		{"user only", `{"user":{"username":"alice"}}`},
		{"null user", `{"token":"Bearer t1","user":null}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := NewFileStore(path).Load(context.Background())
			if !errors.Is(err, ErrNoSession) {
				t.Errorf("Load() error = %v, want %v", err, ErrNoSession)
			}
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte(`{"token":`), 0o600)

	_, err := NewFileStore(path).Load(context.Background())
	if err == nil || errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want decode error", err)
	}
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Save(ctx, Session{Token: "Bearer t", User: testUser}); err != nil {
				t.Errorf("Save() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := store.Load(ctx); err != nil {
		t.Errorf("Load() after concurrent saves failed: %v", err)
	}
}

func TestSealedStore(t *testing.T) {
	enc, err := crypto.NewEncryptor("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	inner := NewMemoryStore()
	runStoreContract(t, NewSealedStore(inner, enc))

	sealed := NewSealedStore(inner, enc)
	ctx := context.Background()
	if err := sealed.Save(ctx, Session{Token: "Bearer secret", User: testUser}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	raw, err := inner.Load(ctx)
	if err != nil {
		t.Fatalf("inner Load() failed: %v", err)
	}
	if raw.Token == "Bearer secret" {
		t.Error("token stored in plaintext")
	}

	other, _ := crypto.NewEncryptor("another-secret-of-enough-length")
	if _, err := NewSealedStore(inner, other).Load(ctx); err == nil {
		t.Error("Load() with wrong key succeeded")
	}
}

func TestTokenSource(t *testing.T) {
	store := NewMemoryStore()
	tokens := TokenSource{Store: store}
	ctx := context.Background()

	token, err := tokens.Token(ctx)
	if err != nil || token != "" {
		t.Errorf("Token() on empty store = %q, %v; want empty, nil", token, err)
	}

	store.Save(ctx, Session{Token: "Bearer t1", User: testUser})
	token, err = tokens.Token(ctx)
	if err != nil || token != "Bearer t1" {
		t.Errorf("Token() = %q, %v; want %q, nil", token, err, "Bearer t1")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.SessionConfig{Store: config.StoreMemory})
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStore", store)
	}

	store, err = Open(ctx, config.SessionConfig{
		Store:         config.StoreFile,
		FilePath:      filepath.Join(t.TempDir(), "s.json"),
		EncryptionKey: "0123456789abcdef",
	})
	if err != nil {
		t.Fatalf("Open(file, encrypted) failed: %v", err)
	}
	if _, ok := store.(*SealedStore); !ok {
		t.Errorf("Open(file, encrypted) = %T, want *SealedStore", store)
	}

	if _, err := Open(ctx, config.SessionConfig{Store: "redis"}); err == nil {
		t.Error("Open(redis) expected error")
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SESSIONSTORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SESSIONSTORE_TEST_DATABASE_URL not set")
	}

	store, err := NewPostgresStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore() failed: %v", err)
	}
	defer store.Close()

	runStoreContract(t, store)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SESSIONSTORE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SESSIONSTORE_TEST_MONGO_URI not set")
	}

	store, err := NewMongoStore(context.Background(), uri)
	if err != nil {
		t.Fatalf("NewMongoStore() failed: %v", err)
	}
	defer store.Close()

	runStoreContract(t, store)
}
