package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usagedeck/usagedeck/internal/analytics"
)

func TestByDaySumsAllCounters(t *testing.T) {
	recordsByDay := map[string][]analytics.UserActivityRecord{
		"2024-06-01": {fullRecord("a@x"), fullRecord("b@x")},
	}

	got := ByDay(recordsByDay, nil)

	want := []DailyAggregate{{
		Date:          "2024-06-01",
		Sessions:      8,
		LinesAdded:    240,
		LinesRemoved:  80,
		Commits:       6,
		PullRequests:  2,
		Conversations: 4,
		Messages:      30,
		WebSearches:   12,
		ToolAccepted:  16,
		ToolRejected:  10,
		ActiveUsers:   2,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByDay mismatch (-want +got):\n%s", diff)
	}
}

func TestByDaySortedAscending(t *testing.T) {
	recordsByDay := map[string][]analytics.UserActivityRecord{
		"2024-06-03": {record("a@x", 1, 0, 0, 0)},
		"2024-06-01": {record("a@x", 2, 0, 0, 0)},
		"2024-06-02": {record("a@x", 3, 0, 0, 0)},
	}

	got := ByDay(recordsByDay, nil)

	dates := make([]string, len(got))
	for i, d := range got {
		dates[i] = d.Date
	}
	want := []string{"2024-06-01", "2024-06-02", "2024-06-03"}
	if diff := cmp.Diff(want, dates); diff != "" {
		t.Errorf("dates out of order (-want +got):\n%s", diff)
	}
}

func TestByDayActiveUsersFromSummary(t *testing.T) {
	recordsByDay := map[string][]analytics.UserActivityRecord{
		"2024-06-01": {record("a@x", 1, 0, 0, 0)},
		"2024-06-02": {record("a@x", 1, 0, 0, 0), record("b@x", 1, 0, 0, 0)},
	}
	summaries := []analytics.DaySummary{
		// Only day 1 has a summary; day 2 falls back to the
		// record count.
		{StartingAt: "2024-06-01T00:00:00Z", DailyActiveUserCount: 42},
	}

	got := ByDay(recordsByDay, summaries)

	if got[0].ActiveUsers != 42 {
		t.Errorf("day 1 activeUsers = %d, want 42 from summary", got[0].ActiveUsers)
	}
	if got[1].ActiveUsers != 2 {
		t.Errorf("day 2 activeUsers = %d, want 2 from record count", got[1].ActiveUsers)
	}
}

func TestByDayConservesTotals(t *testing.T) {
	recordsByDay := map[string][]analytics.UserActivityRecord{
		"2024-06-01": {record("a@x", 5, 0, 0, 0), record("b@x", 7, 0, 0, 0)},
		"2024-06-02": {record("a@x", 3, 0, 0, 0)},
		"2024-06-03": {},
	}

	var recordTotal int
	for _, records := range recordsByDay {
		for _, r := range records {
			recordTotal += r.CodeMetrics.CoreMetrics.DistinctSessionCount
		}
	}

	var dailyTotal int
	for _, d := range ByDay(recordsByDay, nil) {
		dailyTotal += d.Sessions
	}

	if dailyTotal != recordTotal {
		t.Errorf("daily total sessions = %d, want %d", dailyTotal, recordTotal)
	}
}

func TestByDayEmptyDayPresentAsKey(t *testing.T) {
	recordsByDay := map[string][]analytics.UserActivityRecord{
		"2024-06-01": {},
	}

	got := ByDay(recordsByDay, nil)

	want := []DailyAggregate{{Date: "2024-06-01"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByDay mismatch (-want +got):\n%s", diff)
	}
}

func TestByDayEmptyInput(t *testing.T) {
	if got := ByDay(nil, nil); len(got) != 0 {
		t.Errorf("ByDay(nil) = %v, want empty", got)
	}
}
