package domain

import "time"

// DateRange is an inclusive day range.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DayWindows splits an inclusive date range into consecutive,
// non-overlapping windows of at most maxDays days each. The windows
// cover the range exactly; the last window may be shorter.
// maxDays must be positive.
func DayWindows(from, to time.Time, maxDays int) []DateRange {
	if maxDays < 1 || from.After(to) {
		return nil
	}

	var windows []DateRange
	start := from
	for {
		end := start.AddDate(0, 0, maxDays-1)
		if !end.Before(to) {
			windows = append(windows, DateRange{From: start, To: to})
			return windows
		}
		windows = append(windows, DateRange{From: start, To: end})
		start = end.AddDate(0, 0, 1)
	}
}
