// Package sqlite implements the checkpoint store on an embedded SQLite
// database, suitable for single-process desktop use.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/ankigen/internal/store"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists checkpoints to a SQLite file. The schema is managed by
// embedded goose migrations applied at open time.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Statically verify interface satisfaction.
var _ store.CheckpointStore = (*Store)(nil)

// New opens (creating if necessary) the checkpoint database at path and
// applies pending migrations. Use ":memory:" for an ephemeral store.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("checkpoint path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// migrate applies the embedded schema migrations.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply checkpoint migrations: %w", err)
	}
	return nil
}

// Save implements store.CheckpointStore.
func (s *Store) Save(ctx context.Context, sessionID string, state []byte) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (session_id, updated_at, state)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			updated_at = excluded.updated_at,
			state = excluded.state
	`, sessionID, time.Now().UTC().Format(time.RFC3339Nano), state)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load implements store.CheckpointStore.
func (s *Store) Load(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}

	var state []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM checkpoints WHERE session_id = ?
	`, sessionID).Scan(&state)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return state, nil
}

// Delete implements store.CheckpointStore. Deleting a session that has no
// checkpoint is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints WHERE session_id = ?
	`, sessionID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// List implements store.CheckpointStore. Results are ordered most recently
// updated first.
func (s *Store) List(ctx context.Context) ([]store.CheckpointInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, updated_at, LENGTH(state)
		FROM checkpoints
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var infos []store.CheckpointInfo
	for rows.Next() {
		var info store.CheckpointInfo
		var updatedAt string
		if err := rows.Scan(&info.SessionID, &updatedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan checkpoint info: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return infos, nil
}

// Close implements store.CheckpointStore. Closing twice is safe.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
