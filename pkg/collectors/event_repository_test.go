package collectors

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	db, err := NewSQLiteDB(tempFile.Name())
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(tempFile.Name())
	}

	return db, cleanup
}

func TestNewEventRepository(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo, err := NewEventRepository(db)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo == nil {
			t.Fatal("expected repository, got nil")
		}
	})

	t.Run("nil database", func(t *testing.T) {
		_, err := NewEventRepository(nil)
		if err == nil {
			t.Fatal("expected error for nil database")
		}
	})
}

func TestEventRepository_ReplaceAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewEventRepository(db)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	ctx := context.Background()

	events := []domain.Event{
		{Title: "Gig B", URL: "https://example.com/b", StartDate: "2025-10-18", Venue: "Venue B"},
		{Title: "Gig A", URL: "https://example.com/a", StartDate: "2025-10-16", Venue: "Venue A"},
		{Title: "Undated", URL: "https://example.com/u"},
	}

	t.Run("stores a snapshot", func(t *testing.T) {
		if err := repo.ReplaceAll(ctx, "Αττική", events); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.List(ctx, "Αττική")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 events, got %d", len(got))
		}
		// Dated events first, ascending; undated last.
		if got[0].Title != "Gig A" || got[1].Title != "Gig B" || got[2].Title != "Undated" {
			t.Errorf("unexpected order: %v, %v, %v", got[0].Title, got[1].Title, got[2].Title)
		}
	})

	t.Run("replaces the previous snapshot", func(t *testing.T) {
		fresh := []domain.Event{
			{Title: "Only one", URL: "https://example.com/only", StartDate: "2025-10-20"},
		}
		if err := repo.ReplaceAll(ctx, "Αττική", fresh); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.List(ctx, "Αττική")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Title != "Only one" {
			t.Errorf("expected fresh snapshot only, got %+v", got)
		}
	})

	t.Run("locations are isolated", func(t *testing.T) {
		other := []domain.Event{
			{Title: "Salonica gig", URL: "https://example.com/s", StartDate: "2025-10-21"},
		}
		if err := repo.ReplaceAll(ctx, "Θεσσαλονίκη", other); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.List(ctx, "Αττική")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected the Αττική snapshot untouched, got %d events", len(got))
		}
	})

	t.Run("empty location rejected", func(t *testing.T) {
		if err := repo.ReplaceAll(ctx, "", events); err == nil {
			t.Fatal("expected error for empty location")
		}
	})

	t.Run("empty snapshot clears the location", func(t *testing.T) {
		if err := repo.ReplaceAll(ctx, "Αττική", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got, err := repo.List(ctx, "Αττική")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty snapshot, got %d events", len(got))
		}
	})
}
