package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var storeTracer = otel.Tracer("bankclient/sessionstore")

const (
	createSessionTable = `CREATE TABLE IF NOT EXISTS client_session (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	upsertSessionKey = `INSERT INTO client_session (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	selectSessionKeys = `SELECT key, value FROM client_session WHERE key IN ($1, $2)`
	deleteSessionKeys = `DELETE FROM client_session WHERE key IN ($1, $2)`
)

// PostgresStore keeps the session as two rows of a key/value table. Save and
// Clear each run in one transaction.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (p *PostgresStore) migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createSessionTable); err != nil {
		return fmt.Errorf("failed to create client_session table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(ctx context.Context, s Session) (err error) {
	if !s.complete() {
		return ErrIncomplete
	}

	ctx, span := startSpan(ctx, "postgres", "Save")
	defer func() { endSpan(span, err) }()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertSessionKey, KeyToken, s.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertSessionKey, KeyUser, string(s.User)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context) (sess *Session, err error) {
	ctx, span := startSpan(ctx, "postgres", "Load")
	defer func() {
		if errors.Is(err, ErrNoSession) {
			endSpan(span, nil)
			return
		}
		endSpan(span, err)
	}()

	rows, err := p.db.QueryContext(ctx, selectSessionKeys, KeyToken, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	var s Session
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		switch key {
		case KeyToken:
			s.Token = value
		case KeyUser:
			s.User = []byte(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	if !s.complete() {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (p *PostgresStore) Clear(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "postgres", "Clear")
	defer func() { endSpan(span, err) }()

	if _, err := p.db.ExecContext(ctx, deleteSessionKeys, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func startSpan(ctx context.Context, backend, op string) (context.Context, trace.Span) {
	return storeTracer.Start(ctx, "sessionstore."+op, trace.WithAttributes(
		attribute.String("sessionstore.backend", backend),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
