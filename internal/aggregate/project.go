package aggregate

import (
	"sort"

	"github.com/usagedeck/usagedeck/internal/analytics"
)

// Projects folds per-project per-day usage into one row per
// project: Users is the maximum single-day distinct-user count
// seen across the window (concurrent usage, not cumulative
// headcount), Conversations and Messages are sums. The result
// is sorted descending by conversations; ties keep first-seen
// order. Callers that could not retrieve project usage pass an
// empty map and get an empty slice, never an error.
func Projects(
	projectsByDay map[string][]analytics.ProjectUsageRecord,
) []ProjectAggregate {
	dates := make([]string, 0, len(projectsByDay))
	for date := range projectsByDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	byName := make(map[string]*ProjectAggregate)
	var order []string

	for _, date := range dates {
		for _, r := range projectsByDay[date] {
			agg, ok := byName[r.ProjectName]
			if !ok {
				agg = &ProjectAggregate{Name: r.ProjectName}
				byName[r.ProjectName] = agg
				order = append(order, r.ProjectName)
			}
			agg.Users = max(agg.Users, r.DistinctUserCount)
			agg.Conversations += r.ConversationCount
			agg.Messages += r.MessageCount
		}
	}

	result := make([]ProjectAggregate, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Conversations > result[j].Conversations
	})
	return result
}
