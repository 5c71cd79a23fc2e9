package collectors

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// TasteRepository keeps fetched taste profiles; readers only ever need the
// most recent one.
type TasteRepository struct {
	db *sql.DB
}

func NewTasteRepository(db *sql.DB) (*TasteRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	repo := &TasteRepository{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

func (r *TasteRepository) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS tastes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		artists_json TEXT NOT NULL,
		genres_json TEXT NOT NULL,
		retrieved_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tastes_retrieved_at ON tastes(retrieved_at DESC);
	`

	_, err := r.db.Exec(query)
	return err
}

func (r *TasteRepository) Save(ctx context.Context, profile *domain.TasteProfile) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	artists, err := json.Marshal(profile.Artists)
	if err != nil {
		return fmt.Errorf("failed to marshal artists: %w", err)
	}
	genres, err := json.Marshal(profile.Genres)
	if err != nil {
		return fmt.Errorf("failed to marshal genres: %w", err)
	}

	if profile.RetrievedAt.IsZero() {
		profile.RetrievedAt = time.Now()
	}

	query := `INSERT INTO tastes (artists_json, genres_json, retrieved_at) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, string(artists), string(genres), profile.RetrievedAt); err != nil {
		return fmt.Errorf("failed to save taste profile: %w", err)
	}

	return nil
}

func (r *TasteRepository) Latest(ctx context.Context) (*domain.TasteProfile, error) {
	query := `
	SELECT artists_json, genres_json, retrieved_at
	FROM tastes
	ORDER BY retrieved_at DESC
	LIMIT 1
	`

	var profile domain.TasteProfile
	var artists, genres string

	err := r.db.QueryRowContext(ctx, query).Scan(&artists, &genres, &profile.RetrievedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTasteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get taste profile: %w", err)
	}

	if err := json.Unmarshal([]byte(artists), &profile.Artists); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artists: %w", err)
	}
	if err := json.Unmarshal([]byte(genres), &profile.Genres); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genres: %w", err)
	}

	return &profile, nil
}
