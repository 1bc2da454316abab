package aggregate

import (
	"sort"
	"strings"

	"github.com/usagedeck/usagedeck/internal/analytics"
)

// ByDay folds each day's record batch into one DailyAggregate.
// ActiveUsers comes from the matching DaySummary when one
// exists for the day, otherwise from the day's record count.
// Only days present as keys in recordsByDay appear in the
// output; missing days are never invented. The result is
// sorted ascending by date string.
func ByDay(
	recordsByDay map[string][]analytics.UserActivityRecord,
	summaries []analytics.DaySummary,
) []DailyAggregate {
	byDate := make(map[string]analytics.DaySummary, len(summaries))
	for _, s := range summaries {
		date, _, _ := strings.Cut(s.StartingAt, "T")
		byDate[date] = s
	}

	result := make([]DailyAggregate, 0, len(recordsByDay))
	for date, records := range recordsByDay {
		agg := DailyAggregate{Date: date}
		for _, r := range records {
			core := r.CodeMetrics.CoreMetrics
			agg.Sessions += core.DistinctSessionCount
			agg.LinesAdded += core.LinesOfCode.AddedCount
			agg.LinesRemoved += core.LinesOfCode.RemovedCount
			agg.Commits += core.CommitCount
			agg.PullRequests += core.PullRequestCount
			agg.Conversations += r.ChatMetrics.DistinctConversationCount
			agg.Messages += r.ChatMetrics.MessageCount
			agg.WebSearches += r.WebSearchCount
			agg.ToolAccepted += r.CodeMetrics.ToolActions.Accepted()
			agg.ToolRejected += r.CodeMetrics.ToolActions.Rejected()
		}
		if s, ok := byDate[date]; ok {
			agg.ActiveUsers = s.DailyActiveUserCount
		} else {
			agg.ActiveUsers = len(records)
		}
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}
