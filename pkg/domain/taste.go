package domain

import "time"

// TasteProfile is a user's music taste derived from their streaming history.
// Both lists are ordered most-favorite first.
type TasteProfile struct {
	Artists     []string  `json:"favorite_artists"`
	Genres      []string  `json:"favorite_genres"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// Suggestion is one stored recommendation run: the events the recommender
// selected for a period, keyed so a re-run of the same period overwrites
// rather than duplicates.
type Suggestion struct {
	PeriodKey string    `json:"period_key"`
	CreatedAt time.Time `json:"created_at"`
	Events    []Event   `json:"events"`
}
