package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Month lookup tables for Greek date pills. Keys are accent-stripped and
// lower-cased; both the genitive and nominative spellings of every month are
// listed because listing pages mix the two. Built once, never mutated.
var greekMonthsFull = map[string]time.Month{
	"ιανουαριου": time.January, "ιανουαριος": time.January,
	"φεβρουαριου": time.February, "φεβρουαριος": time.February,
	"μαρτιου": time.March, "μαρτιος": time.March,
	"απριλιου": time.April, "απριλιος": time.April,
	"μαιου": time.May, "μαιος": time.May,
	"ιουνιου": time.June, "ιουνιος": time.June,
	"ιουλιου": time.July, "ιουλιος": time.July,
	"αυγουστου": time.August, "αυγουστος": time.August,
	"σεπτεμβριου": time.September, "σεπτεμβριος": time.September,
	"οκτωβριου": time.October, "οκτωβριος": time.October,
	"νοεμβριου": time.November, "νοεμβριος": time.November,
	"δεκεμβριου": time.December, "δεκεμβριος": time.December,
}

// Abbreviations as they appear on the more.com listing UI.
var greekMonthsAbbr = map[string]time.Month{
	"ιαν": time.January, "φεβ": time.February, "μαρ": time.March,
	"απρ": time.April, "μαι": time.May, "ιουν": time.June,
	"ιουλ": time.July, "αυγ": time.August, "σεπ": time.September,
	"οκτ": time.October, "νοε": time.November, "δεκ": time.December,
}

var (
	isoDatePattern     = regexp.MustCompile(`(\d{4})[-/](\d{2})[-/](\d{2})`)
	numericDatePattern = regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})`)
	greekWordPattern   = regexp.MustCompile(`(\d{1,2})\s+([\p{Latin}\p{Greek}.]+)`)
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// makeDate builds a local-midnight instant and rejects numbers that do not
// form a real calendar date (time.Date silently normalizes overflow, so the
// components are checked after construction).
func makeDate(year int, month time.Month, day int, loc *time.Location) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return nil
	}
	return &t
}

// ParseISODate searches text for a YYYY-MM-DD or YYYY/MM/DD pattern anywhere
// in the string and returns the matched calendar date at local midnight.
// Returns nil when no pattern matches or the numbers do not form a valid
// date; it never returns an error.
func ParseISODate(text string, loc *time.Location) *time.Time {
	m := isoDatePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return makeDate(year, time.Month(month), day, loc)
}

// ParseGreekPiece parses a single date fragment: first a numeric D/M/Y form
// (slash, dot or dash separated, 2-digit years meaning 2000+YY), then a
// "<day> <month-name>" form resolved against the Greek month tables using
// fallbackYear. Returns nil for anything unparsable or invalid.
func ParseGreekPiece(text string, fallbackYear int, loc *time.Location) *time.Time {
	if text == "" {
		return nil
	}

	if m := numericDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return makeDate(year, time.Month(month), day, loc)
	}

	m := greekWordPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	word := strings.ReplaceAll(stripAccents(m[2]), ".", "")
	month, ok := greekMonthsAbbr[word]
	if !ok {
		month, ok = greekMonthsFull[word]
	}
	if !ok {
		return nil
	}
	return makeDate(fallbackYear, month, day, loc)
}

// ParseGreekRange parses a pill like "16 Οκτ - 18 Οκτ" into a start/end pair.
// A single piece yields (d, d). With two or more dash-separated pieces only
// the first and last are used; middle pieces of malformed text are ignored.
// If the end piece fails but the start parsed, the span collapses to a single
// day.
func ParseGreekRange(text string, fallbackYear int, loc *time.Location) (*time.Time, *time.Time) {
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, "-")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 {
		d := ParseGreekPiece(parts[0], fallbackYear, loc)
		return d, d
	}
	start := ParseGreekPiece(parts[0], fallbackYear, loc)
	end := ParseGreekPiece(parts[len(parts)-1], fallbackYear, loc)
	if end == nil {
		end = start
	}
	return start, end
}

// NormalizeSpan converts a scraped card's date fields into a Span. A
// machine-readable ISO date is trusted over the human-readable pill text;
// the pill is only consulted when no ISO date was supplied.
func NormalizeSpan(startISO, pill string, fallbackYear int, loc *time.Location) Span {
	if startISO != "" {
		if d := ParseISODate(startISO, loc); d != nil {
			return Span{Start: d, End: d}
		}
	}
	start, end := ParseGreekRange(pill, fallbackYear, loc)
	return Span{Start: start, End: end}
}

// Layouts accepted for stored start_date values, tried in order after the
// date-only and trailing-Z special cases.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseEventDate parses a stored start_date string into an aware instant in
// loc. Date-only values are taken as local midnight; aware datetimes are
// converted into loc; naive datetimes are assumed to already be local.
// Returns nil if the value is empty or unparsable.
func ParseEventDate(startDate string, loc *time.Location) *time.Time {
	s := strings.TrimSpace(startDate)
	if s == "" {
		return nil
	}

	if len(s) == 10 && s[4] == '-' && s[7] == '-' {
		if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
			return &t
		}
		return nil
	}

	for _, layout := range eventDateLayouts {
		var t time.Time
		var err error
		if strings.Contains(layout, "Z07:00") {
			t, err = time.Parse(layout, s)
			if err == nil {
				t = t.In(loc)
			}
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return &t
		}
	}
	return nil
}
