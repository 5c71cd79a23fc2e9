package interfaces

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/calendar"
	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// CardSource produces raw event cards from a listing site.
type CardSource interface {
	FetchCards(ctx context.Context) ([]domain.RawCard, error)
}

// EventService drives the gather → recommend → bucket pipeline.
type EventService struct {
	events      domain.EventRepository
	suggestions domain.SuggestionRepository
	tastes      domain.TasteRepository
	cards       CardSource
	tasteSource domain.TasteSource
	selector    domain.EventSelector
	loc         *time.Location

	days          int
	locationOnly  bool
	locationTitle string
}

type EventServiceConfig struct {
	Days          int
	LocationOnly  bool
	LocationTitle string
}

func NewEventService(
	events domain.EventRepository,
	suggestions domain.SuggestionRepository,
	tastes domain.TasteRepository,
	cards CardSource,
	tasteSource domain.TasteSource,
	selector domain.EventSelector,
	loc *time.Location,
	cfg EventServiceConfig,
) *EventService {
	if cfg.Days < 1 {
		cfg.Days = 30
	}
	if cfg.LocationTitle == "" {
		cfg.LocationTitle = "Αττική"
	}
	return &EventService{
		events:        events,
		suggestions:   suggestions,
		tastes:        tastes,
		cards:         cards,
		tasteSource:   tasteSource,
		selector:      selector,
		loc:           loc,
		days:          cfg.Days,
		locationOnly:  cfg.LocationOnly,
		locationTitle: cfg.LocationTitle,
	}
}

// Gather scrapes the listing, normalizes and filters the cards against the
// window [anchor, anchor+days-1] and replaces the stored snapshot. Malformed
// cards degrade to exclusion, never to an error.
func (s *EventService) Gather(ctx context.Context, anchor time.Time, days int) ([]domain.Event, error) {
	if s.cards == nil {
		return nil, fmt.Errorf("no card source configured")
	}
	if days < 1 {
		days = s.days
	}

	window := calendar.NewWindow(anchor.In(s.loc), days)
	fallbackYear := window.A.Year()

	cards, err := s.cards.FetchCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("gather failed: %w", err)
	}

	var events []domain.Event
	for _, card := range cards {
		if card.Hidden || card.URL == "" {
			continue
		}

		if s.locationOnly && strings.TrimSpace(card.Region) != s.locationTitle {
			continue
		}

		span := calendar.NormalizeSpan(card.StartISO, card.Pill, fallbackYear, s.loc)
		if !span.Overlaps(window) {
			continue
		}

		startDate := ""
		if rep := span.RepresentativeDate(window); rep != nil {
			startDate = rep.Format("2006-01-02")
		}

		events = append(events, domain.Event{
			Title:     card.Title,
			URL:       card.URL,
			StartDate: startDate,
			Venue:     card.Venue,
			City:      card.City,
			Region:    card.Region,
			Image:     card.Image,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].StartDate, events[j].StartDate
		if di == "" {
			di = "9999-99-99"
		}
		if dj == "" {
			dj = "9999-99-99"
		}
		if di != dj {
			return di < dj
		}
		return events[i].Title < events[j].Title
	})

	if err := s.events.ReplaceAll(ctx, s.locationTitle, events); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	log.Printf("gathered %d events for %s (window %s..%s)",
		len(events), s.locationTitle,
		window.A.Format("2006-01-02"), window.B.Format("2006-01-02"))

	return events, nil
}

// Recommend matches the stored snapshot against the latest taste profile and
// upserts the suggestion for the current ISO week, so re-runs are idempotent.
func (s *EventService) Recommend(ctx context.Context, today time.Time) (*domain.Suggestion, error) {
	if s.selector == nil {
		return nil, fmt.Errorf("no event selector configured")
	}

	upcoming, err := s.events.List(ctx, s.locationTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	profile, err := s.tasteProfile(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := s.selector.SelectEvents(ctx, profile, upcoming)
	if err != nil {
		return nil, fmt.Errorf("recommendation failed: %w", err)
	}

	year, week := today.In(s.loc).ISOWeek()
	suggestion := &domain.Suggestion{
		PeriodKey: fmt.Sprintf("%04d-W%02d", year, week),
		Events:    selected,
	}

	if err := s.suggestions.Upsert(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to store suggestion: %w", err)
	}

	log.Printf("stored %d suggestions for period %s", len(selected), suggestion.PeriodKey)

	return suggestion, nil
}

// tasteProfile returns the stored profile, fetching a fresh one from the
// taste source the first time around.
func (s *EventService) tasteProfile(ctx context.Context) (*domain.TasteProfile, error) {
	profile, err := s.tastes.Latest(ctx)
	if err == nil {
		return profile, nil
	}
	if err != domain.ErrTasteNotFound {
		return nil, fmt.Errorf("failed to load taste profile: %w", err)
	}
	if s.tasteSource == nil {
		return nil, domain.ErrTasteNotFound
	}

	profile, err = s.tasteSource.FetchTasteProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch taste profile: %w", err)
	}
	if err := s.tastes.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save taste profile: %w", err)
	}
	return profile, nil
}

// RefreshTastes fetches and stores a fresh taste profile.
func (s *EventService) RefreshTastes(ctx context.Context) (*domain.TasteProfile, error) {
	if s.tasteSource == nil {
		return nil, fmt.Errorf("no taste source configured")
	}
	profile, err := s.tasteSource.FetchTasteProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch taste profile: %w", err)
	}
	if err := s.tastes.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save taste profile: %w", err)
	}
	return profile, nil
}

func (s *EventService) Events(ctx context.Context) (*domain.EventListResponse, error) {
	events, err := s.events.List(ctx, s.locationTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return &domain.EventListResponse{Events: events, Total: len(events)}, nil
}

// Buckets partitions the latest suggestion into the newsletter sections.
// With no suggestion stored yet it falls back to the full snapshot.
func (s *EventService) Buckets(ctx context.Context, today time.Time) (*domain.BucketSet, error) {
	var events []domain.Event

	suggestion, err := s.suggestions.Latest(ctx)
	switch err {
	case nil:
		events = suggestion.Events
	case domain.ErrSuggestionNotFound:
		events, err = s.events.List(ctx, s.locationTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load suggestion: %w", err)
	}

	set := calendar.Bucket(events, today, s.loc)
	return &set, nil
}
