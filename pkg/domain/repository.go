package domain

import (
	"context"
	"time"
)

// EventRepository stores the normalized event snapshot for a location.
type EventRepository interface {
	ReplaceAll(ctx context.Context, location string, events []Event) error
	List(ctx context.Context, location string) ([]Event, error)
}

// SuggestionRepository stores recommendation runs keyed by period.
type SuggestionRepository interface {
	Upsert(ctx context.Context, s *Suggestion) error
	GetByPeriod(ctx context.Context, periodKey string) (*Suggestion, error)
	Latest(ctx context.Context) (*Suggestion, error)
}

// TasteRepository stores the most recently fetched taste profile.
type TasteRepository interface {
	Save(ctx context.Context, profile *TasteProfile) error
	Latest(ctx context.Context) (*TasteProfile, error)
}

// TasteSource fetches a taste profile from a streaming service.
type TasteSource interface {
	FetchTasteProfile(ctx context.Context) (*TasteProfile, error)
}

// EventSelector picks the events matching a taste profile.
type EventSelector interface {
	SelectEvents(ctx context.Context, profile *TasteProfile, upcoming []Event) ([]Event, error)
}

// EventService is the surface the HTTP handlers and scheduled jobs consume.
type EventService interface {
	Gather(ctx context.Context, anchor time.Time, days int) ([]Event, error)
	Recommend(ctx context.Context, today time.Time) (*Suggestion, error)
	Events(ctx context.Context) (*EventListResponse, error)
	Buckets(ctx context.Context, today time.Time) (*BucketSet, error)
}
