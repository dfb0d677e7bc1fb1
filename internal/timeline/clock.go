// Package timeline projects the flat conversation log into a rendered,
// day-grouped sequence.
package timeline

import "time"

// InvalidTimeLabel replaces clock and day labels for instants that could
// not be parsed, so one malformed record never blanks a whole timeline.
const InvalidTimeLabel = "Invalid Date"

// DayLabel renders a calendar-day heading in loc: "Today", "Yesterday",
// or a short date such as "5 Mar 2024".
func DayLabel(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return InvalidTimeLabel
	}

	day := t.In(loc)
	today := now.In(loc)
	switch {
	case sameDay(day, today):
		return "Today"
	case sameDay(day, today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("2 Jan 2006")
	}
}

// ClockLabel renders a 12-hour wall-clock string in loc, e.g. "05:30 PM".
func ClockLabel(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return InvalidTimeLabel
	}
	return t.In(loc).Format("03:04 PM")
}

// sameDay reports whether two instants fall on the same calendar day.
// Both must already be in the comparison location.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
