package calendar

import (
	"sort"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// weekdayIndex maps time.Weekday (Sunday=0) onto Monday=0..Sunday=6.
func weekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// StartOfWeek returns the Monday of the week containing d, at local midnight.
func StartOfWeek(d time.Time) time.Time {
	return Midnight(d).AddDate(0, 0, -weekdayIndex(d))
}

// EndOfWeek returns the Sunday of the week containing d.
func EndOfWeek(d time.Time) time.Time {
	return StartOfWeek(d).AddDate(0, 0, 6)
}

// NextMonday returns the Monday of the week after d.
func NextMonday(d time.Time) time.Time {
	return StartOfWeek(d).AddDate(0, 0, 7)
}

// NextSunday returns the Sunday of the week after d.
func NextSunday(d time.Time) time.Time {
	return NextMonday(d).AddDate(0, 0, 6)
}

// WeekendBounds returns Friday..Sunday of the week containing today.
func WeekendBounds(today time.Time) (time.Time, time.Time) {
	mon := StartOfWeek(today)
	return mon.AddDate(0, 0, 4), mon.AddDate(0, 0, 6)
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// Bucket partitions events into four calendar-relative buckets keyed off
// today:
//
//	this_week    – remaining weekdays up to Thursday; suppressed entirely on
//	               Fridays (nil slice), when only a weekend remains
//	this_weekend – Friday..Sunday of the current week
//	next_week    – Monday..Sunday of the following week
//	coming_soon  – from the Monday two weeks out up to 30 days from today
//
// Each event lands in the first matching bucket only; events with no
// parseable start_date are skipped, and events matching no bucket are dropped
// silently. Buckets are sorted ascending by start instant. Bucket is a pure
// function of its inputs and safe for concurrent use.
func Bucket(events []domain.Event, today time.Time, loc *time.Location) domain.BucketSet {
	today = Midnight(today.In(loc))

	monThis := StartOfWeek(today)
	thuThis := monThis.AddDate(0, 0, 3)
	friThis, sunThis := WeekendBounds(today)
	monNext := NextMonday(today)
	sunNext := NextSunday(today)
	monTwoWeeks := monNext.AddDate(0, 0, 7)
	thirtyDaysOut := today.AddDate(0, 0, 30)

	friday := weekdayIndex(today) == 4

	// A nil this_week slice marks Friday suppression (rendered as JSON null);
	// an active-but-empty bucket stays a non-nil empty slice.
	set := domain.BucketSet{
		ThisWeekend: []domain.Event{},
		NextWeek:    []domain.Event{},
		ComingSoon:  []domain.Event{},
	}
	if !friday {
		set.ThisWeek = []domain.Event{}
	}

	for _, ev := range events {
		dt := ParseEventDate(ev.StartDate, loc)
		if dt == nil {
			continue
		}
		d := Midnight(*dt)

		if !friday {
			startBound := monThis
			if today.After(startBound) {
				startBound = today
			}
			if inRange(d, startBound, thuThis) {
				set.ThisWeek = append(set.ThisWeek, ev)
				continue
			}
		}

		if inRange(d, friThis, sunThis) {
			set.ThisWeekend = append(set.ThisWeekend, ev)
			continue
		}

		if inRange(d, monNext, sunNext) {
			set.NextWeek = append(set.NextWeek, ev)
			continue
		}

		if inRange(d, monTwoWeeks, thirtyDaysOut) {
			set.ComingSoon = append(set.ComingSoon, ev)
		}
	}

	sortBucket(set.ThisWeek, loc)
	sortBucket(set.ThisWeekend, loc)
	sortBucket(set.NextWeek, loc)
	sortBucket(set.ComingSoon, loc)

	return set
}

// sortBucket orders events ascending by start instant. Undated events cannot
// reach a bucket, but if one ever did it sorts to the end deterministically.
func sortBucket(events []domain.Event, loc *time.Location) {
	sort.SliceStable(events, func(i, j int) bool {
		di := ParseEventDate(events[i].StartDate, loc)
		dj := ParseEventDate(events[j].StartDate, loc)
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.Before(*dj)
	})
}
