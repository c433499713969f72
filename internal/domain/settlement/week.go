package settlement

import "time"

// Week identifies one ISO-8601 week
type Week struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t
func WeekOf(t time.Time) Week {
	year, week := t.ISOWeek()
	return Week{Year: year, Week: week}
}

// PeriodOf returns the [start, end) bounds of the ISO week containing t,
// in t's location. Start is Monday 00:00, end is the following Monday 00:00.
func PeriodOf(t time.Time) (start, end time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = day.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// Before reports whether w is strictly earlier than other
func (w Week) Before(other Week) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}
