package store

import (
	"database/sql"
	"fmt"

	"github.com/sweeney/garden-mister/internal/logic"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
)`

const upsert = `INSERT INTO state (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// SQLite keeps the scheduler state in a small key/value table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// One writer and no concurrent readers: keep a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the three keys, using defaults for any that are missing.
func (s *SQLite) Load() (logic.Persisted, error) {
	p := logic.DefaultPersisted()
	if s.db == nil {
		return p, ErrClosed
	}

	rows, err := s.db.Query(`SELECT key, value FROM state`)
	if err != nil {
		return logic.DefaultPersisted(), fmt.Errorf("query state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return logic.DefaultPersisted(), fmt.Errorf("scan state: %w", err)
		}
		switch key {
		case KeyLastMistEpoch:
			p.LastMistEpoch = value
		case KeyHasEverMisted:
			p.HasEverMisted = value != 0
		case KeyEnabled:
			p.Enabled = value != 0
		}
	}
	if err := rows.Err(); err != nil {
		return logic.DefaultPersisted(), fmt.Errorf("read state: %w", err)
	}
	return p, nil
}

// Save writes all three keys in one transaction.
func (s *SQLite) Save(p logic.Persisted) error {
	if s.db == nil {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	values := []struct {
		key   string
		value int64
	}{
		{KeyLastMistEpoch, p.LastMistEpoch},
		{KeyHasEverMisted, boolToInt(p.HasEverMisted)},
		{KeyEnabled, boolToInt(p.Enabled)},
	}
	for _, v := range values {
		if _, err := tx.Exec(upsert, v.key, v.value); err != nil {
			return fmt.Errorf("write %s: %w", v.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
