// Package aggregate folds raw per-user per-day activity records
// into the reporting views: daily time series, per-user totals,
// per-tool acceptance counts, and per-project totals. All folds
// are pure functions over already-materialized input; they never
// fail on well-formed data.
package aggregate

// DailyAggregate is one calendar day summed across every user
// active that day. The JSON field names are part of the snapshot
// wire contract and must not change.
type DailyAggregate struct {
	Date          string `json:"date"`
	Sessions      int    `json:"sessions"`
	LinesAdded    int    `json:"linesAdded"`
	LinesRemoved  int    `json:"linesRemoved"`
	Commits       int    `json:"commits"`
	PullRequests  int    `json:"pullRequests"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	WebSearches   int    `json:"webSearches"`
	ToolAccepted  int    `json:"toolAccepted"`
	ToolRejected  int    `json:"toolRejected"`
	ActiveUsers   int    `json:"activeUsers"`
}

// UserAggregate is one logical user's totals across the whole
// window, keyed by normalized display name.
type UserAggregate struct {
	Name           string  `json:"name"`
	Sessions       int     `json:"sessions"`
	LinesAdded     int     `json:"linesAdded"`
	LinesRemoved   int     `json:"linesRemoved"`
	Commits        int     `json:"commits"`
	PullRequests   int     `json:"pullRequests"`
	Conversations  int     `json:"conversations"`
	Messages       int     `json:"messages"`
	WebSearches    int     `json:"webSearches"`
	AcceptanceRate float64 `json:"acceptanceRate"`
}

// ToolAggregate is the accept/reject totals for one tool
// category across all users and days.
type ToolAggregate struct {
	Tool     string `json:"tool"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// ProjectAggregate is one project's totals across the window.
// Users is the peak single-day distinct-user count, not a sum.
type ProjectAggregate struct {
	Name          string `json:"name"`
	Users         int    `json:"users"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
}

// UserDailyRecord is one user's counters for one day, kept as a
// per-user time series for streak and weekend-activity checks.
type UserDailyRecord struct {
	Date          string `json:"date"`
	Sessions      int    `json:"sessions"`
	LinesAdded    int    `json:"linesAdded"`
	LinesRemoved  int    `json:"linesRemoved"`
	Commits       int    `json:"commits"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	WebSearches   int    `json:"webSearches"`
}
