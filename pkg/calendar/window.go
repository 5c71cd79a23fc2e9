package calendar

import (
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// Span is an event's known duration. Both ends nil means no date could be
// parsed; such a span never participates in filtering or bucketing. When only
// one date is known, Start == End.
type Span struct {
	Start *time.Time
	End   *time.Time
}

// Absent reports whether the span carries no parseable date at all.
func (s Span) Absent() bool {
	return s.Start == nil && s.End == nil
}

// Window is an inclusive date range [A, B] used to filter scraped events.
type Window struct {
	A time.Time
	B time.Time
}

// NewWindow builds a window from an anchor date and a day count. A is the
// anchor at local midnight and B is A plus max(1, days)-1 days, so the window
// always spans at least one day.
func NewWindow(anchor time.Time, days int) Window {
	if days < 1 {
		days = 1
	}
	a := Midnight(anchor)
	return Window{A: a, B: a.AddDate(0, 0, days-1)}
}

// NewWindowBounds builds a window from explicit bounds and fails fast on an
// inverted range, which is a programmer error rather than a data problem.
func NewWindowBounds(a, b time.Time) (Window, error) {
	if a.After(b) {
		return Window{}, domain.ErrInvalidWindow
	}
	return Window{A: a, B: b}, nil
}

// Overlaps reports whether the span intersects the window, inclusive on both
// window bounds. An absent span never overlaps. A half-known span is clamped
// to a single point before testing.
func (s Span) Overlaps(w Window) bool {
	if s.Absent() {
		return false
	}
	start := s.Start
	if start == nil {
		start = s.End
	}
	end := s.End
	if end == nil {
		end = s.Start
	}
	return !(end.Before(w.A) || start.After(w.B))
}

// RepresentativeDate picks the single calendar date stored for a possibly
// multi-day span: the earliest known instant, clamped forward to the window
// start for events already in progress when the window opens. If the clamped
// value still exceeds the window end it resets to the window start; that
// branch should be unreachable for spans that passed Overlaps, but it is kept
// for parity with long-standing downstream behavior. Time of day is
// discarded.
func (s Span) RepresentativeDate(w Window) *time.Time {
	if s.Absent() {
		return nil
	}
	earliest := s.Start
	if earliest == nil {
		earliest = s.End
	}
	chosen := *earliest
	if chosen.Before(w.A) {
		chosen = w.A
	}
	if chosen.After(w.B) {
		chosen = w.A
	}
	d := Midnight(chosen)
	return &d
}
