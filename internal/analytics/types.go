// Package analytics is the client for the upstream enterprise
// analytics API: per-user per-day activity records, day-level
// summaries, and per-project usage, all paginated.
package analytics

// UserIdentity identifies a member of the organization.
type UserIdentity struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// ChatMetrics holds the chat-side counters of a user's day.
type ChatMetrics struct {
	DistinctConversationCount int `json:"distinct_conversation_count"`
	MessageCount              int `json:"message_count"`
}

// LinesOfCode holds lines added/removed counters.
type LinesOfCode struct {
	AddedCount   int `json:"added_count"`
	RemovedCount int `json:"removed_count"`
}

// CoreMetrics holds the coding-session counters of a user's day.
type CoreMetrics struct {
	DistinctSessionCount int         `json:"distinct_session_count"`
	CommitCount          int         `json:"commit_count"`
	PullRequestCount     int         `json:"pull_request_count"`
	LinesOfCode          LinesOfCode `json:"lines_of_code"`
}

// ToolAction holds accept/reject counters for one tool category.
type ToolAction struct {
	AcceptedCount int `json:"accepted_count"`
	RejectedCount int `json:"rejected_count"`
}

// ToolActions holds per-tool accept/reject counters. The
// category set is fixed by the API; there is no dynamic
// category discovery.
type ToolActions struct {
	EditTool         ToolAction `json:"edit_tool"`
	MultiEditTool    ToolAction `json:"multi_edit_tool"`
	WriteTool        ToolAction `json:"write_tool"`
	NotebookEditTool ToolAction `json:"notebook_edit_tool"`
}

// Accepted returns the total accepted count across all
// tool categories.
func (t ToolActions) Accepted() int {
	return t.EditTool.AcceptedCount +
		t.MultiEditTool.AcceptedCount +
		t.WriteTool.AcceptedCount +
		t.NotebookEditTool.AcceptedCount
}

// Rejected returns the total rejected count across all
// tool categories.
func (t ToolActions) Rejected() int {
	return t.EditTool.RejectedCount +
		t.MultiEditTool.RejectedCount +
		t.WriteTool.RejectedCount +
		t.NotebookEditTool.RejectedCount
}

// CodeMetrics groups core coding counters and tool actions.
type CodeMetrics struct {
	CoreMetrics CoreMetrics `json:"core_metrics"`
	ToolActions ToolActions `json:"tool_actions"`
}

// UserActivityRecord is one user's counters for one calendar
// day, as delivered by the upstream API. The API guarantees at
// most one record per (user, day).
type UserActivityRecord struct {
	User           UserIdentity `json:"user"`
	ChatMetrics    ChatMetrics  `json:"chat_metrics"`
	CodeMetrics    CodeMetrics  `json:"claude_code_metrics"`
	WebSearchCount int          `json:"web_search_count"`
}

// DaySummary is an org-level summary for one calendar day.
// StartingAt is an ISO-8601 timestamp; the date portion joins
// against the daily record batches.
type DaySummary struct {
	StartingAt           string `json:"starting_at"`
	EndingAt             string `json:"ending_at"`
	DailyActiveUserCount int    `json:"daily_active_user_count"`
}

// ProjectUsageRecord is one project's usage counters for one
// calendar day. DistinctUserCount is a point-in-time headcount,
// not cumulative across days.
type ProjectUsageRecord struct {
	ProjectName       string `json:"project_name"`
	ProjectID         string `json:"project_id"`
	DistinctUserCount int    `json:"distinct_user_count"`
	ConversationCount int    `json:"conversation_count"`
	MessageCount      int    `json:"message_count"`
}
