// Package storage provides SQLite-based persistence for finished
// sessions and a local cache of the on-chain leaderboard, so history
// and boards survive offline runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SessionRecord is one finished session.
type SessionRecord struct {
	ID        int64
	Score     int
	Outcome   string // "win" or "loss"
	Resource  int    // Resource remaining at the end
	Augmented bool
	ElapsedMs int64
	TxRef     string // Submission tx hash, empty if never submitted
	CreatedAt time.Time
}

// CachedEntry is one leaderboard row mirrored from the chain.
type CachedEntry struct {
	Rank      int
	Player    string // 0x address
	Name      string
	Score     int64
	Augmented bool
}

// SessionStats contains aggregated statistics over saved sessions.
type SessionStats struct {
	Sessions   int
	Wins       int
	Augmented  int
	BestScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			score INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			resource INTEGER NOT NULL,
			augmented INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			tx_ref TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_score ON sessions(score DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);

		CREATE TABLE IF NOT EXISTS board_cache (
			scope TEXT NOT NULL,
			rank INTEGER NOT NULL,
			player TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL,
			augmented INTEGER NOT NULL DEFAULT 0,
			cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, rank)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished session.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(rec SessionRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions (score, outcome, resource, augmented, elapsed_ms, tx_ref)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Score, rec.Outcome, rec.Resource, boolInt(rec.Augmented), rec.ElapsedMs, rec.TxRef,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SetSessionTxRef attaches a submission tx hash to a saved session.
func (s *Store) SetSessionTxRef(id int64, txRef string) error {
	_, err := s.db.Exec("UPDATE sessions SET tx_ref = ? WHERE id = ?", txRef, id)
	if err != nil {
		return fmt.Errorf("storage: cannot update tx ref: %w", err)
	}
	return nil
}

// RecentSessions retrieves the most recent finished sessions.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, score, outcome, resource, augmented, elapsed_ms, tx_ref, created_at
		 FROM sessions
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var augmented int
		var txRef sql.NullString
		var createdAt any

		if err := rows.Scan(&rec.ID, &rec.Score, &rec.Outcome, &rec.Resource,
			&augmented, &rec.ElapsedMs, &txRef, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		rec.Augmented = augmented != 0
		if txRef.Valid {
			rec.TxRef = txRef.String
		}
		rec.CreatedAt = parseDBTime(createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// TopSessions retrieves the best local sessions by score.
func (s *Store) TopSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, score, outcome, resource, augmented, elapsed_ms, tx_ref, created_at
		 FROM sessions
		 ORDER BY score DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var augmented int
		var txRef sql.NullString
		var createdAt any

		if err := rows.Scan(&rec.ID, &rec.Score, &rec.Outcome, &rec.Resource,
			&augmented, &rec.ElapsedMs, &txRef, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		rec.Augmented = augmented != 0
		if txRef.Valid {
			rec.TxRef = txRef.String
		}
		rec.CreatedAt = parseDBTime(createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// BestScore returns the highest local score.
// Returns 0 if no sessions exist.
func (s *Store) BestScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(score) FROM sessions").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// Stats retrieves aggregated statistics over all saved sessions.
func (s *Store) Stats() (*SessionStats, error) {
	stats := &SessionStats{}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'win' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(augmented), 0),
		        COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0)
		 FROM sessions`,
	).Scan(&stats.Sessions, &stats.Wins, &stats.Augmented, &stats.BestScore, &stats.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get session stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM sessions ORDER BY created_at DESC LIMIT 1`,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseDBTime(lastPlayed)
	}

	return stats, nil
}

// ClearSessions deletes all saved sessions.
func (s *Store) ClearSessions() error {
	_, err := s.db.Exec("DELETE FROM sessions")
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// CacheBoard replaces the cached leaderboard for a scope.
func (s *Store) CacheBoard(scope string, entries []CachedEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin cache update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM board_cache WHERE scope = ?", scope); err != nil {
		return fmt.Errorf("storage: cannot clear board cache: %w", err)
	}

	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO board_cache (scope, rank, player, name, score, augmented, cached_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scope, e.Rank, e.Player, e.Name, e.Score, boolInt(e.Augmented), now,
		); err != nil {
			return fmt.Errorf("storage: cannot cache board row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit board cache: %w", err)
	}
	return nil
}

// CachedBoard retrieves the cached leaderboard for a scope, plus when
// it was cached. An empty cache returns no rows and a zero time.
func (s *Store) CachedBoard(scope string) ([]CachedEntry, time.Time, error) {
	rows, err := s.db.Query(
		`SELECT rank, player, name, score, augmented, cached_at
		 FROM board_cache
		 WHERE scope = ?
		 ORDER BY rank ASC`,
		scope,
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: cannot query board cache: %w", err)
	}
	defer rows.Close()

	var entries []CachedEntry
	var cachedAt time.Time
	for rows.Next() {
		var e CachedEntry
		var augmented int
		var at any
		if err := rows.Scan(&e.Rank, &e.Player, &e.Name, &e.Score, &augmented, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("storage: cannot scan cache row: %w", err)
		}
		e.Augmented = augmented != 0
		cachedAt = parseDBTime(at)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, cachedAt, nil
}

// parseDBTime handles the datetime forms the driver may return.
func parseDBTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
