package leaderboard

import (
	"sort"
	"time"

	"github.com/usagedeck/usagedeck/internal/aggregate"
)

// qualifies reports whether a day counts toward a streak or the
// weekend-activity flag.
func qualifies(r aggregate.UserDailyRecord) bool {
	return r.Sessions > 0 || r.Conversations > 0
}

// Streak returns the length of the run of consecutive active
// days ending at the most recent day in the series. The walk
// starts at the newest record and breaks on the first day with
// zero qualifying activity or the first gap of more than one
// calendar day. An inactive most-recent day means a streak of
// zero, regardless of earlier activity.
func Streak(records []aggregate.UserDailyRecord) int {
	sorted := make([]aggregate.UserDailyRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	streak := 0
	var prev time.Time
	for _, rec := range sorted {
		if !qualifies(rec) {
			break
		}
		day, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			break
		}
		if streak > 0 && !day.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = day
	}
	return streak
}

// Streaks computes the streak for every user in the daily
// series map.
func Streaks(
	userDaily map[string][]aggregate.UserDailyRecord,
) map[string]int {
	streaks := make(map[string]int, len(userDaily))
	for name, records := range userDaily {
		streaks[name] = Streak(records)
	}
	return streaks
}

// WeekendActive reports whether any Saturday or Sunday in the
// series had qualifying activity.
func WeekendActive(records []aggregate.UserDailyRecord) bool {
	for _, rec := range records {
		if !qualifies(rec) {
			continue
		}
		day, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			continue
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return false
}
