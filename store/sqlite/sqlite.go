/*
Package sqlite provides SQLite-backed persistence for profiles and
simulation history.

PURPOSE:
  Stores financial profiles and the simulation runs executed against
  them. Profiles are persisted as JSON documents keyed by ID with a
  few indexed columns pulled out for listing; simulation rows keep the
  full result JSON for replay in the UI.

PII POSTURE:
  Nothing in this schema holds raw document text. Profiles carry
  numbers and enums; redacted text is never written here either, only
  the fields extracted from it. There is no table for documents at
  all.

KEY TABLES:
  profiles:    One row per financial profile, JSON body
  simulations: One row per simulation run, linked to its profile

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block and crash recovery is
  cleaner.

USAGE:
  store, err := sqlite.New("./data/taxguard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - taxcalc/profile.go: The profile model serialized here
  - api/handlers.go: The only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/taxcalc"
)

// Store persists profiles and simulation history in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		filing_status TEXT NOT NULL,
		profile_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		difference TEXT NOT NULL,
		beneficial INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_simulations_profile
		ON simulations(profile_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROFILES
// =============================================================================

// SaveProfile inserts or updates a profile.
func (s *Store) SaveProfile(ctx context.Context, p *taxcalc.FinancialProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO profiles (id, filing_status, profile_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filing_status = excluded.filing_status,
			profile_json = excluded.profile_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, p.ID, string(p.FilingStatus), string(body), now, now)
	return err
}

// GetProfile retrieves a profile by ID. Returns nil, nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*taxcalc.FinancialProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT profile_json FROM profiles WHERE id = ?", id,
	).Scan(&body)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p taxcalc.FinancialProfile
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", id, err)
	}
	return &p, nil
}

// ListProfiles returns all profiles, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]*taxcalc.FinancialProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT profile_json FROM profiles ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*taxcalc.FinancialProfile
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var p taxcalc.FinancialProfile
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile and, via cascade, its simulations.
// Reports whether a row was actually deleted.
func (s *Store) DeleteProfile(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// =============================================================================
// SIMULATIONS
// =============================================================================

// SimulationRecord is one persisted simulation run.
type SimulationRecord struct {
	ID         string                    `json:"id"`
	ProfileID  string                    `json:"profile_id"`
	Scenario   string                    `json:"scenario"`
	Difference decimal.Decimal           `json:"difference"`
	Beneficial bool                      `json:"beneficial"`
	Result     *taxcalc.SimulationResult `json:"result"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// SaveSimulation persists one run.
func (s *Store) SaveSimulation(ctx context.Context, rec SimulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal simulation: %w", err)
	}

	beneficial := 0
	if rec.Beneficial {
		beneficial = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, profile_id, scenario, difference, beneficial, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProfileID, rec.Scenario, rec.Difference.String(),
		beneficial, string(body), rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListSimulations returns a profile's runs, newest first.
func (s *Store) ListSimulations(ctx context.Context, profileID string) ([]SimulationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, scenario, difference, beneficial, result_json, created_at
		FROM simulations WHERE profile_id = ? ORDER BY created_at DESC`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SimulationRecord
	for rows.Next() {
		var rec SimulationRecord
		var diff, body, createdAt string
		var beneficial int
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.Scenario, &diff, &beneficial, &body, &createdAt); err != nil {
			return nil, err
		}
		rec.Difference, _ = decimal.NewFromString(diff)
		rec.Beneficial = beneficial == 1
		if err := json.Unmarshal([]byte(body), &rec.Result); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneSimulations deletes simulation rows created before the cutoff.
// Returns how many rows were removed.
func (s *Store) PruneSimulations(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM simulations WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Reset wipes all data. Test and demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"simulations", "profiles"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
