// Package leaderboard derives rankings, activity streaks, and
// achievement badges from the user aggregates and per-user
// daily series.
package leaderboard

import (
	"sort"

	"github.com/usagedeck/usagedeck/internal/aggregate"
)

// RankedUser is a UserAggregate with its 1-based leaderboard
// position.
type RankedUser struct {
	aggregate.UserAggregate
	Rank int `json:"rank"`
}

// Rank sorts users descending by sessions and assigns 1-based
// ranks by position. The sort is stable: users with equal
// session counts keep their relative input order, so rankings
// are reproducible for identical input.
func Rank(users []aggregate.UserAggregate) []RankedUser {
	ranked := make([]RankedUser, len(users))
	for i, u := range users {
		ranked[i] = RankedUser{UserAggregate: u}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sessions > ranked[j].Sessions
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
