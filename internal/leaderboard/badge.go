package leaderboard

import "github.com/usagedeck/usagedeck/internal/aggregate"

// Badge labels. The sessions and commits pairs are tiers where
// the higher threshold wins; the rest are independent and may
// co-occur freely.
const (
	BadgeCodeMachine    = "Code Machine"
	BadgeProlificCoder  = "Prolific Coder"
	BadgeSuperCommitter = "Super Committer"
	BadgeCommitter      = "Committer"
	BadgeIronStreak     = "Iron Streak"
	BadgeWeekendWarrior = "Weekend Warrior"
	BadgeCodeSurgeon    = "Code Surgeon"
	BadgeArchitect      = "Architect"
)

// Badges evaluates the achievement rules against a user's
// totals, computed streak, and weekend-activity flag.
func Badges(
	user aggregate.UserAggregate, streak int, weekendActive bool,
) []string {
	badges := []string{} // serializes as [] rather than null

	switch {
	case user.Sessions >= 100:
		badges = append(badges, BadgeCodeMachine)
	case user.Sessions >= 50:
		badges = append(badges, BadgeProlificCoder)
	}

	switch {
	case user.Commits >= 50:
		badges = append(badges, BadgeSuperCommitter)
	case user.Commits >= 10:
		badges = append(badges, BadgeCommitter)
	}

	if streak >= 7 {
		badges = append(badges, BadgeIronStreak)
	}
	if weekendActive {
		badges = append(badges, BadgeWeekendWarrior)
	}
	if user.LinesRemoved > user.LinesAdded {
		badges = append(badges, BadgeCodeSurgeon)
	}
	if user.LinesAdded >= 50_000 {
		badges = append(badges, BadgeArchitect)
	}

	return badges
}

// Entry is one leaderboard row: a ranked user with the derived
// streak and badge set.
type Entry struct {
	RankedUser
	Streak int      `json:"streak"`
	Badges []string `json:"badges"`
}

// Build assembles the full leaderboard from user aggregates and
// the per-user daily series. Users missing from the series get
// a zero streak and no weekend flag.
func Build(
	users []aggregate.UserAggregate,
	userDaily map[string][]aggregate.UserDailyRecord,
) []Entry {
	entries := make([]Entry, 0, len(users))
	for _, ru := range Rank(users) {
		records := userDaily[ru.Name]
		streak := Streak(records)
		entries = append(entries, Entry{
			RankedUser: ru,
			Streak:     streak,
			Badges: Badges(
				ru.UserAggregate, streak, WeekendActive(records),
			),
		})
	}
	return entries
}
