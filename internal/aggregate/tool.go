package aggregate

import "github.com/usagedeck/usagedeck/internal/analytics"

// toolCategories is the fixed category set, in display order.
var toolCategories = []struct {
	name   string
	action func(analytics.ToolActions) analytics.ToolAction
}{
	{"Edit", func(t analytics.ToolActions) analytics.ToolAction { return t.EditTool }},
	{"Multi-Edit", func(t analytics.ToolActions) analytics.ToolAction { return t.MultiEditTool }},
	{"Write", func(t analytics.ToolActions) analytics.ToolAction { return t.WriteTool }},
	{"NotebookEdit", func(t analytics.ToolActions) analytics.ToolAction { return t.NotebookEditTool }},
}

// Tools sums accept/reject counts per tool category across all
// records in all days. Categories with zero total activity are
// omitted entirely rather than emitted as zero rows.
func Tools(
	recordsByDay map[string][]analytics.UserActivityRecord,
) []ToolAggregate {
	totals := make([]ToolAggregate, len(toolCategories))
	for i, cat := range toolCategories {
		totals[i].Tool = cat.name
	}

	for _, records := range recordsByDay {
		for _, r := range records {
			for i, cat := range toolCategories {
				a := cat.action(r.CodeMetrics.ToolActions)
				totals[i].Accepted += a.AcceptedCount
				totals[i].Rejected += a.RejectedCount
			}
		}
	}

	result := make([]ToolAggregate, 0, len(totals))
	for _, t := range totals {
		if t.Accepted+t.Rejected > 0 {
			result = append(result, t)
		}
	}
	return result
}
