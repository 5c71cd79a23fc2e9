package collectors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// EventRepository stores the daily normalized event snapshot per location.
// Each gather run replaces the previous snapshot for its location atomically.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) (*EventRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	repo := &EventRepository{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

func (r *EventRepository) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		start_date TEXT,
		venue TEXT,
		city TEXT,
		region TEXT,
		image TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_location ON events(location);
	CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_events_location_url ON events(location, url);
	`

	_, err := r.db.Exec(query)
	return err
}

// ReplaceAll swaps the stored snapshot for a location with a fresh one in a
// single transaction, so readers never observe a half-written gather run.
func (r *EventRepository) ReplaceAll(ctx context.Context, location string, events []domain.Event) error {
	if location == "" {
		return fmt.Errorf("location is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE location = ?`, location); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	insert := `
	INSERT INTO events (location, title, url, start_date, venue, city, region, image, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for _, ev := range events {
		var startDate sql.NullString
		if ev.StartDate != "" {
			startDate = sql.NullString{String: ev.StartDate, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, insert,
			location,
			ev.Title,
			ev.URL,
			startDate,
			ev.Venue,
			ev.City,
			ev.Region,
			ev.Image,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// List returns the stored snapshot for a location ordered by start date, with
// undated events last and title as the tie-break.
func (r *EventRepository) List(ctx context.Context, location string) ([]domain.Event, error) {
	query := `
	SELECT title, url, start_date, venue, city, region, image
	FROM events
	WHERE location = ?
	ORDER BY start_date IS NULL, start_date, title
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		var startDate sql.NullString

		err := rows.Scan(
			&ev.Title,
			&ev.URL,
			&startDate,
			&ev.Venue,
			&ev.City,
			&ev.Region,
			&ev.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if startDate.Valid {
			ev.StartDate = startDate.String
		}

		events = append(events, ev)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return events, nil
}
