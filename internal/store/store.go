// Package store persists cards, sessions and review logs in SQLite.
// It implements session.Store on top of database/sql with the pure Go
// driver, so binaries build without CGO.
package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/nturan/flashgram-bot/internal/session"
)

// Store is the SQLite-backed implementation of session.Store.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ session.Store = (*Store)(nil)

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewCardID returns a fresh lexicographically sortable card ID.
func (s *Store) NewCardID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. FLASHGRAM_DB environment variable
// 2. $XDG_DATA_HOME/flashgram/flashgram.db
// 3. ~/.local/share/flashgram/flashgram.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("FLASHGRAM_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "flashgram", "flashgram.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// unavailable tags a driver failure so callers can match it with
// errors.Is(err, session.ErrStoreUnavailable).
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, session.ErrStoreUnavailable, err)
}

// fmtTime serializes a timestamp as UTC RFC 3339. Fixed-width strings keep
// SQL comparisons on time columns correct.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
