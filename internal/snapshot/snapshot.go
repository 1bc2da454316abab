// Package snapshot defines the immutable aggregate snapshot
// produced by a fetch cycle, its durable JSON artifact format,
// and the atomically-swapped in-memory store the server reads
// from. The JSON field names are the interchange contract
// between the offline producer and the live server and must
// round-trip exactly.
package snapshot

import (
	"time"

	"github.com/usagedeck/usagedeck/internal/aggregate"
)

// DateRange is the inclusive day range a snapshot covers.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Snapshot is one fetch cycle's complete output: the five
// reporting views keyed by fetch timestamp and date range.
// A new fetch replaces the active snapshot wholesale; nothing
// mutates one in place.
type Snapshot struct {
	FetchedAt time.Time                              `json:"fetchedAt"`
	DateRange DateRange                              `json:"dateRange"`
	Daily     []aggregate.DailyAggregate             `json:"daily"`
	Users     []aggregate.UserAggregate              `json:"users"`
	Tools     []aggregate.ToolAggregate              `json:"tools"`
	Projects  []aggregate.ProjectAggregate           `json:"projects"`
	UserDaily map[string][]aggregate.UserDailyRecord `json:"userDaily,omitempty"`
}
