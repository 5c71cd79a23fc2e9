package collectors

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// SuggestionRepository stores recommendation runs. The period key (e.g.
// 2025-W42) is unique so an idempotent re-run of the same period overwrites
// its previous payload.
type SuggestionRepository struct {
	db *sql.DB
}

func NewSuggestionRepository(db *sql.DB) (*SuggestionRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	repo := &SuggestionRepository{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

func (r *SuggestionRepository) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS suggestions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_key TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS uq_suggestions_period ON suggestions(period_key);
	CREATE INDEX IF NOT EXISTS idx_suggestions_created_at ON suggestions(created_at DESC);
	`

	_, err := r.db.Exec(query)
	return err
}

func (r *SuggestionRepository) Upsert(ctx context.Context, s *domain.Suggestion) error {
	if s == nil {
		return fmt.Errorf("suggestion cannot be nil")
	}
	if s.PeriodKey == "" {
		return fmt.Errorf("period key is required")
	}

	payload, err := json.Marshal(s.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion payload: %w", err)
	}

	s.CreatedAt = time.Now()

	query := `
	INSERT INTO suggestions (period_key, created_at, payload_json)
	VALUES (?, ?, ?)
	ON CONFLICT(period_key) DO UPDATE SET created_at = excluded.created_at, payload_json = excluded.payload_json
	`

	if _, err := r.db.ExecContext(ctx, query, s.PeriodKey, s.CreatedAt, string(payload)); err != nil {
		return fmt.Errorf("failed to upsert suggestion: %w", err)
	}

	return nil
}

func (r *SuggestionRepository) GetByPeriod(ctx context.Context, periodKey string) (*domain.Suggestion, error) {
	query := `
	SELECT period_key, created_at, payload_json
	FROM suggestions
	WHERE period_key = ?
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, periodKey))
}

func (r *SuggestionRepository) Latest(ctx context.Context) (*domain.Suggestion, error) {
	query := `
	SELECT period_key, created_at, payload_json
	FROM suggestions
	ORDER BY created_at DESC
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *SuggestionRepository) scanOne(row *sql.Row) (*domain.Suggestion, error) {
	var s domain.Suggestion
	var payload string

	err := row.Scan(&s.PeriodKey, &s.CreatedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &s.Events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestion payload: %w", err)
	}

	return &s, nil
}
