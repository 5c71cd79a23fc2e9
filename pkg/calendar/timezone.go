package calendar

import "time"

// ZoneName is the canonical display timezone for every normalized instant.
const ZoneName = "Europe/Athens"

// Zone resolves the canonical timezone once at startup. If the IANA database
// is unavailable it degrades to a fixed +03:00 offset with no DST transitions,
// which is off by one hour during winter time; the second return value reports
// the degraded mode so the caller can log it once. The resolved location is
// passed into the parsing and bucketing functions as a value and never
// re-resolved per call.
func Zone() (*time.Location, bool) {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		return time.FixedZone("EEST", 3*60*60), true
	}
	return loc, false
}

// Midnight truncates t to local midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
