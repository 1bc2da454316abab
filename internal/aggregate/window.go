package aggregate

import (
	"fmt"
	"strings"
	"time"
)

// Window is the selected lookback range applied to the full
// daily series before presentation.
type Window string

const (
	Window7d  Window = "7d"
	Window14d Window = "14d"
	Window30d Window = "30d"
	// WindowMTD selects days in the current calendar month.
	WindowMTD Window = "mtd"
)

// ParseWindow validates a window string, defaulting to 7d for
// empty input.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return Window7d, nil
	case Window7d, Window14d, Window30d, WindowMTD:
		return Window(s), nil
	}
	return "", fmt.Errorf("invalid range %q: must be 7d, 14d, 30d, or mtd", s)
}

// SliceWindow filters the full daily series down to the window.
// Fixed-day windows are a positional suffix-take over whatever
// days are present; month-to-date is a calendar filter on the
// month of now. The two deliberately diverge when the series
// has gaps.
func SliceWindow(
	daily []DailyAggregate, w Window, now time.Time,
) []DailyAggregate {
	switch w {
	case Window7d:
		return lastN(daily, 7)
	case Window14d:
		return lastN(daily, 14)
	case Window30d:
		return lastN(daily, 30)
	case WindowMTD:
		return monthToDate(daily, now)
	}
	return daily
}

// lastN takes the trailing n entries of the series.
func lastN(daily []DailyAggregate, n int) []DailyAggregate {
	if len(daily) <= n {
		return daily
	}
	return daily[len(daily)-n:]
}

// monthToDate keeps entries whose date falls in now's calendar
// month, matched by YYYY-MM prefix.
func monthToDate(
	daily []DailyAggregate, now time.Time,
) []DailyAggregate {
	prefix := now.UTC().Format("2006-01")
	result := make([]DailyAggregate, 0, len(daily))
	for _, d := range daily {
		if strings.HasPrefix(d.Date, prefix) {
			result = append(result, d)
		}
	}
	return result
}
