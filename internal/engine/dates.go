package engine

import "time"

// tradingDates enumerates the calendar days between start and end inclusive,
// skipping Saturdays and Sundays. No holiday calendar is applied.
func tradingDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			dates = append(dates, d)
		}
	}
	return dates
}
