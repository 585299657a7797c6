package dates

import "time"

// Window is a half-open [Start, End) time interval used by the calendar
// query operators (is_today, is_this_week, in_last_days, ...). Windows are
// computed from the caller's "now" in its location, so evaluation-time
// local server time decides the boundaries.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayWindow is the calendar day containing now.
func DayWindow(now time.Time) Window {
	start := StartOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow is the ISO calendar week (Monday to Sunday) containing now.
func WeekWindow(now time.Time) Window {
	start := StartOfDay(now)
	// time.Weekday counts Sunday as 0; shift so Monday opens the week.
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow is the calendar month containing now.
func MonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// LastDaysWindow is the relative window covering the n days ending now,
// inclusive of the current moment.
func LastDaysWindow(now time.Time, n int) Window {
	return Window{Start: now.AddDate(0, 0, -n), End: now.Add(time.Second)}
}

// LastMonthsWindow is the relative window covering the n months ending now.
func LastMonthsWindow(now time.Time, n int) Window {
	return Window{Start: now.AddDate(0, -n, 0), End: now.Add(time.Second)}
}
