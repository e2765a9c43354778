package prompts

import (
	"fmt"
	"time"
)

// TripDays is the inclusive length of the trip in calendar days
func TripDays(start, end time.Time) int {
	s := civilDate(start)
	e := civilDate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// TripDates lists every calendar date of the trip, start and end included
func TripDates(start, end time.Time) []time.Time {
	days := TripDays(start, end)
	dates := make([]time.Time, 0, days)
	s := civilDate(start)
	for i := 0; i < days; i++ {
		dates = append(dates, s.AddDate(0, 0, i))
	}
	return dates
}

// civilDate drops the clock and zone so DST shifts cannot change day counts
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDay(t time.Time) string {
	return t.Format("Mon 02 Jan 2006")
}

func formatRange(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
