package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"animehub/pkg/models"
)

// Store persists the deduplicated catalog to sqlite so the server can warm
// its cache across restarts and the loader CLI can populate it offline.
// Each save replaces the whole snapshot; row position preserves first-seen
// order.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Save replaces the stored snapshot with the given entries.
func (s *Store) Save(ctx context.Context, entries []models.AnimeEntry) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog (position, identity, payload) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry %d: %w", i, err)
		}
		identity, _ := e.Identity()
		if _, err := stmt.ExecContext(ctx, i, identity, string(payload)); err != nil {
			return fmt.Errorf("exec insert %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_meta (key, value) VALUES ('saved_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Load reads the stored snapshot back in saved order. An empty database
// yields an empty slice, not an error.
func (s *Store) Load(ctx context.Context) ([]models.AnimeEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT payload FROM catalog ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var out []models.AnimeEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var e models.AnimeEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			// one corrupt row should not lose the whole snapshot
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// SavedAt returns when the snapshot was last written, or the zero time when
// no snapshot exists.
func (s *Store) SavedAt(ctx context.Context) (time.Time, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'saved_at'`)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("scan saved_at: %w", err)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return t, nil
}
