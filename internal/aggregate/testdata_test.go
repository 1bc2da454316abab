package aggregate

import "github.com/usagedeck/usagedeck/internal/analytics"

// record builds a UserActivityRecord with the counters most
// tests care about; remaining fields stay zero.
func record(email string, sessions, commits, accepted, rejected int) analytics.UserActivityRecord {
	return analytics.UserActivityRecord{
		User: analytics.UserIdentity{EmailAddress: email},
		CodeMetrics: analytics.CodeMetrics{
			CoreMetrics: analytics.CoreMetrics{
				DistinctSessionCount: sessions,
				CommitCount:          commits,
			},
			ToolActions: analytics.ToolActions{
				EditTool: analytics.ToolAction{
					AcceptedCount: accepted,
					RejectedCount: rejected,
				},
			},
		},
	}
}

// fullRecord builds a record with every counter populated.
func fullRecord(email string) analytics.UserActivityRecord {
	return analytics.UserActivityRecord{
		User: analytics.UserIdentity{EmailAddress: email},
		ChatMetrics: analytics.ChatMetrics{
			DistinctConversationCount: 2,
			MessageCount:              15,
		},
		CodeMetrics: analytics.CodeMetrics{
			CoreMetrics: analytics.CoreMetrics{
				DistinctSessionCount: 4,
				CommitCount:          3,
				PullRequestCount:     1,
				LinesOfCode: analytics.LinesOfCode{
					AddedCount:   120,
					RemovedCount: 40,
				},
			},
			ToolActions: analytics.ToolActions{
				EditTool:         analytics.ToolAction{AcceptedCount: 5, RejectedCount: 1},
				MultiEditTool:    analytics.ToolAction{AcceptedCount: 2},
				WriteTool:        analytics.ToolAction{RejectedCount: 3},
				NotebookEditTool: analytics.ToolAction{AcceptedCount: 1, RejectedCount: 1},
			},
		},
		WebSearchCount: 6,
	}
}
