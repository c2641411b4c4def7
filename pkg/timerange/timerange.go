package timerange

import "time"

// WorkingHoursPerDay is the nominal chair time per room used for
// utilization statistics.
const WorkingHoursPerDay = 8

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Ranges touching at a boundary do not overlap,
// so back-to-back bookings are legal.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsPast reports whether t is strictly before now.
func IsPast(t, now time.Time) bool {
	return t.Before(now)
}

// IsPastDay reports whether day falls on a calendar day before today,
// ignoring the time-of-day component of both arguments.
func IsPastDay(day, today time.Time) bool {
	return StartOfDay(day).Before(StartOfDay(today))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday midnight at or before t.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysIn returns the number of calendar days covered by [start, end),
// counting any partially covered day as a full one. It is at least 1.
func DaysIn(start, end time.Time) int {
	days := int(StartOfDay(end.Add(-time.Nanosecond)).Sub(StartOfDay(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// At combines the calendar day of day with the given hour and minute.
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
