package domain

// Event is the normalized shape persisted after scraping and range
// filtering. StartDate is a date-only ISO string (YYYY-MM-DD); empty means no
// parseable date survived normalization.
type Event struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	StartDate string `json:"start_date,omitempty"`
	Venue     string `json:"venue,omitempty"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	Image     string `json:"image,omitempty"`
}

// RawCard is one event card as extracted from a listing page, before any
// normalization. StartISO is the machine-readable date from the card's
// metadata when present; Pill is the human-readable date label used only as
// a fallback.
type RawCard struct {
	Hidden   bool
	URL      string
	Image    string
	StartISO string
	Title    string
	Venue    string
	City     string
	Region   string
	Pill     string
}

// BucketSet groups already-filtered events into the four newsletter sections.
// ThisWeek is nil (JSON null) when today is a Friday and the bucket is
// suppressed entirely; an active bucket with no matching events is an empty
// non-nil slice (JSON []). The two states are observably different on
// purpose.
type BucketSet struct {
	ThisWeek    []Event `json:"this_week"`
	ThisWeekend []Event `json:"this_weekend"`
	NextWeek    []Event `json:"next_week"`
	ComingSoon  []Event `json:"coming_soon"`
}

// ThisWeekSuppressed reports whether the this_week bucket was suppressed by
// the Friday rule, as opposed to merely having no events.
func (b BucketSet) ThisWeekSuppressed() bool {
	return b.ThisWeek == nil
}

type EventListResponse struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}
