// Package storage provides SQLite-based persistence for runs, meta progression
// and run history. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/stardust/internal/run"
)

// DefaultProfile is used when no profile name is given.
const DefaultProfile = "default"

// Save slot keys.
const (
	keyRun  = "current"
	keyMeta = "meta"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
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

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS saves (
			profile TEXT NOT NULL,
			key TEXT NOT NULL,
			blob BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (profile, key)
		);

		CREATE TABLE IF NOT EXISTS run_history (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			seed TEXT NOT NULL,
			modifier TEXT NOT NULL,
			victory INTEGER NOT NULL,
			floor INTEGER NOT NULL DEFAULT 0,
			reward INTEGER NOT NULL DEFAULT 0,
			deck TEXT NOT NULL,
			relics TEXT NOT NULL,
			token TEXT NOT NULL,
			ghost TEXT NOT NULL,
			finished_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_history_profile ON run_history(profile, finished_at DESC);
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

// Profile returns the save slots and history of one player. Profiles share
// the database but never see each other's data.
func (s *Store) Profile(name string) *Profile {
	if name == "" {
		name = DefaultProfile
	}
	return &Profile{db: s.db, name: name}
}

// ProfileInfo describes a profile with saved data.
type ProfileInfo struct {
	Name      string
	HasRun    bool
	UpdatedAt time.Time
}

// Profiles lists every profile that has a save slot, most recently updated
// first.
func (s *Store) Profiles(ctx context.Context) ([]ProfileInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile, MAX(key = ?), MAX(updated_at)
		 FROM saves
		 GROUP BY profile
		 ORDER BY MAX(updated_at) DESC, profile`,
		keyRun,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileInfo
	for rows.Next() {
		var p ProfileInfo
		var updatedAt any
		if err := rows.Scan(&p.Name, &p.HasRun, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.UpdatedAt = parseTime(updatedAt)
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// Profile is one player's view of the store. It implements run.Persistence
// and run.Recorder.
type Profile struct {
	db   *sql.DB
	name string
}

var (
	_ run.Persistence = (*Profile)(nil)
	_ run.Recorder    = (*Profile)(nil)
)

// Name returns the profile name.
func (p *Profile) Name() string {
	return p.name
}

// SaveRun writes the in-progress run blob.
func (p *Profile) SaveRun(ctx context.Context, blob []byte) error {
	return p.put(ctx, keyRun, blob)
}

// LoadRun reads the in-progress run blob, or run.ErrNoData.
func (p *Profile) LoadRun(ctx context.Context) ([]byte, error) {
	return p.get(ctx, keyRun)
}

// ClearRun deletes the in-progress run. Clearing an empty slot is not an
// error.
func (p *Profile) ClearRun(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx,
		"DELETE FROM saves WHERE profile = ? AND key = ?",
		p.name, keyRun,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot clear run: %w", err)
	}
	return nil
}

// SaveMeta writes the meta progression blob.
func (p *Profile) SaveMeta(ctx context.Context, blob []byte) error {
	return p.put(ctx, keyMeta, blob)
}

// LoadMeta reads the meta progression blob, or run.ErrNoData.
func (p *Profile) LoadMeta(ctx context.Context) ([]byte, error) {
	return p.get(ctx, keyMeta)
}

func (p *Profile) put(ctx context.Context, key string, blob []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO saves (profile, key, blob, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(profile, key) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP`,
		p.name, key, blob,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save %s: %w", key, err)
	}
	return nil
}

func (p *Profile) get(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := p.db.QueryRowContext(ctx,
		"SELECT blob FROM saves WHERE profile = ? AND key = ?",
		p.name, key,
	).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, run.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load %s: %w", key, err)
	}
	return blob, nil
}

// RecordRun appends a finished run to the history. A summary without an
// id gets a fresh one.
func (p *Profile) RecordRun(ctx context.Context, sum run.Summary) error {
	if sum.ID == "" {
		sum.ID = uuid.NewString()
	}
	deck, err := json.Marshal(orEmpty(sum.Deck))
	if err != nil {
		return fmt.Errorf("storage: cannot encode deck: %w", err)
	}
	relics, err := json.Marshal(orEmpty(sum.Relics))
	if err != nil {
		return fmt.Errorf("storage: cannot encode relics: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO run_history
		 (id, profile, seed, modifier, victory, floor, reward, deck, relics, token, ghost, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID,
		p.name,
		sum.Seed,
		sum.Modifier,
		sum.Victory,
		sum.Floor,
		sum.Reward,
		string(deck),
		string(relics),
		sum.Token,
		sum.Ghost,
		sum.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest finished runs, newest first.
func (p *Profile) RecentRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, seed, modifier, victory, floor, reward, deck, relics, token, ghost, finished_at
		 FROM run_history
		 WHERE profile = ?
		 ORDER BY finished_at DESC, rowid DESC
		 LIMIT ?`,
		p.name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var out []run.Summary
	for rows.Next() {
		var sum run.Summary
		var deck, relics string
		var finished int64
		if err := rows.Scan(
			&sum.ID,
			&sum.Seed,
			&sum.Modifier,
			&sum.Victory,
			&sum.Floor,
			&sum.Reward,
			&deck,
			&relics,
			&sum.Token,
			&sum.Ghost,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(deck), &sum.Deck); err != nil {
			return nil, fmt.Errorf("storage: cannot decode deck of run %s: %w", sum.ID, err)
		}
		if err := json.Unmarshal([]byte(relics), &sum.Relics); err != nil {
			return nil, fmt.Errorf("storage: cannot decode relics of run %s: %w", sum.ID, err)
		}
		sum.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// Stats aggregates a profile's history.
type Stats struct {
	Runs          int
	Wins          int
	BestFloor     int
	TotalStardust int
	LastPlayed    time.Time
}

// WinRate returns wins over runs, or zero with no runs.
func (s Stats) WinRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Runs)
}

// Stats returns aggregated statistics for the profile.
func (p *Profile) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var last sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(victory), 0), COALESCE(MAX(floor), 0),
		        COALESCE(SUM(reward), 0), MAX(finished_at)
		 FROM run_history WHERE profile = ?`,
		p.name,
	).Scan(&st.Runs, &st.Wins, &st.BestFloor, &st.TotalStardust, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	if last.Valid {
		st.LastPlayed = time.UnixMilli(last.Int64).UTC()
	}
	return st, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(time.DateTime, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
