package aggregate

import (
	"sort"

	"github.com/usagedeck/usagedeck/internal/analytics"
)

// userAccumulator is the mutable running total for one display
// name. It is owned exclusively by the fold that creates it and
// finalized into an immutable UserAggregate.
type userAccumulator struct {
	UserAggregate
	accepted int
	rejected int
}

// ByUser folds every record across every day into one
// UserAggregate per normalized display name. Records whose raw
// identities normalize to the same name are merged, counters
// summed. The output preserves first-seen order (days ascending,
// records in batch order) so downstream stable sorts give
// reproducible tie-breaks; callers apply their own presentation
// sort on top.
func ByUser(
	recordsByDay map[string][]analytics.UserActivityRecord,
) []UserAggregate {
	dates := sortedDates(recordsByDay)

	byName := make(map[string]*userAccumulator)
	var order []string

	for _, date := range dates {
		for _, r := range recordsByDay[date] {
			name := NormalizeIdentity(r.User.EmailAddress)
			acc, ok := byName[name]
			if !ok {
				acc = &userAccumulator{
					UserAggregate: UserAggregate{Name: name},
				}
				byName[name] = acc
				order = append(order, name)
			}

			core := r.CodeMetrics.CoreMetrics
			acc.Sessions += core.DistinctSessionCount
			acc.LinesAdded += core.LinesOfCode.AddedCount
			acc.LinesRemoved += core.LinesOfCode.RemovedCount
			acc.Commits += core.CommitCount
			acc.PullRequests += core.PullRequestCount
			acc.Conversations += r.ChatMetrics.DistinctConversationCount
			acc.Messages += r.ChatMetrics.MessageCount
			acc.WebSearches += r.WebSearchCount
			acc.accepted += r.CodeMetrics.ToolActions.Accepted()
			acc.rejected += r.CodeMetrics.ToolActions.Rejected()
		}
	}

	result := make([]UserAggregate, 0, len(order))
	for _, name := range order {
		acc := byName[name]
		acc.AcceptanceRate = acceptanceRate(acc.accepted, acc.rejected)
		result = append(result, acc.UserAggregate)
	}
	return result
}

// acceptanceRate is accepted/(accepted+rejected) as a
// percentage, 0 when there were no tool actions at all.
func acceptanceRate(accepted, rejected int) float64 {
	total := accepted + rejected
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total) * 100
}

// ByUserDaily builds the per-user daily time series consumed by
// the leaderboard's streak and weekend-activity checks. Each
// user's series is sorted ascending by date. A user with
// multiple raw identities normalizing to the same name gets a
// single merged series.
func ByUserDaily(
	recordsByDay map[string][]analytics.UserActivityRecord,
) map[string][]UserDailyRecord {
	series := make(map[string][]UserDailyRecord)

	for _, date := range sortedDates(recordsByDay) {
		for _, r := range recordsByDay[date] {
			name := NormalizeIdentity(r.User.EmailAddress)
			core := r.CodeMetrics.CoreMetrics

			recs := series[name]
			if n := len(recs); n > 0 && recs[n-1].Date == date {
				// Merged identity: fold into the existing day.
				rec := &recs[n-1]
				rec.Sessions += core.DistinctSessionCount
				rec.LinesAdded += core.LinesOfCode.AddedCount
				rec.LinesRemoved += core.LinesOfCode.RemovedCount
				rec.Commits += core.CommitCount
				rec.Conversations += r.ChatMetrics.DistinctConversationCount
				rec.Messages += r.ChatMetrics.MessageCount
				rec.WebSearches += r.WebSearchCount
				continue
			}

			series[name] = append(recs, UserDailyRecord{
				Date:          date,
				Sessions:      core.DistinctSessionCount,
				LinesAdded:    core.LinesOfCode.AddedCount,
				LinesRemoved:  core.LinesOfCode.RemovedCount,
				Commits:       core.CommitCount,
				Conversations: r.ChatMetrics.DistinctConversationCount,
				Messages:      r.ChatMetrics.MessageCount,
				WebSearches:   r.WebSearchCount,
			})
		}
	}
	return series
}

// SortBySessions stable-sorts users descending by sessions.
// Operates in place and returns the slice for chaining.
func SortBySessions(users []UserAggregate) []UserAggregate {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Sessions > users[j].Sessions
	})
	return users
}

// SortByLinesAdded stable-sorts users descending by lines
// added, the "top contributors" presentation order.
func SortByLinesAdded(users []UserAggregate) []UserAggregate {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].LinesAdded > users[j].LinesAdded
	})
	return users
}

// sortedDates returns the map's day keys in ascending order so
// folds visit records deterministically.
func sortedDates(
	recordsByDay map[string][]analytics.UserActivityRecord,
) []string {
	dates := make([]string, 0, len(recordsByDay))
	for date := range recordsByDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
