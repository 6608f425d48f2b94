package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a MemoryStore that survives restarts.
type SQLiteStore struct {
	db *sql.DB

	// rng is shared by concurrent requests.
	mu  sync.Mutex
	rng *rand.Rand
}

// OpenSQLiteStore opens or creates the character database at path.
func OpenSQLiteStore(path string, rng *rand.Rand) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty memory db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating memory db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening memory db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS characters (
			agent_id TEXT PRIMARY KEY,
			arc_step INTEGER NOT NULL,
			json TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing memory db: %w", err)
		}
	}
	return &SQLiteStore{db: db, rng: rng}, nil
}

func (s *SQLiteStore) Advance(ctx context.Context, agentID, personaSeed string) (Character, error) {
	if agentID == "" {
		agentID = unknownAgent
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Character{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var c Character
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT json FROM characters WHERE agent_id = ?`, agentID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p, rawSeed := ParsePersona(personaSeed)
		s.mu.Lock()
		c = NewCharacter(p, rawSeed, s.rng)
		s.mu.Unlock()
	case err != nil:
		return Character{}, fmt.Errorf("loading character %s: %w", agentID, err)
	default:
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return Character{}, fmt.Errorf("decoding character %s: %w", agentID, err)
		}
	}

	c.ArcStep++
	b, err := json.Marshal(c)
	if err != nil {
		return Character{}, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO characters (agent_id, arc_step, json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET arc_step = excluded.arc_step, json = excluded.json, updated_at = excluded.updated_at`,
		agentID, c.ArcStep, string(b), now, now)
	if err != nil {
		return Character{}, fmt.Errorf("saving character %s: %w", agentID, err)
	}
	if err := tx.Commit(); err != nil {
		return Character{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

// Len returns the number of remembered characters.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
