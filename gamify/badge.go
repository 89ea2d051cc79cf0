package gamify

import (
	"github.com/jinzhu/copier"
)

/*

Badge is an immutable catalog entity. The catalog and its unlock thresholds
are defined here in code, not stored; only the award relation (UserBadge)
mutates. A badge unlocks once MinStreak consecutive journaling days or
MinEntries total entries are reached, whichever threshold the badge defines.

*/

type Badge struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	// Unlock thresholds. Zero means the dimension does not apply.
	MinStreak  int `json:"-"`
	MinEntries int `json:"-"`
}

// catalog order is display order. Ids are stable and referenced by
// persisted UserBadge rows, never rename them.
var catalog = []Badge{
	{Id: "streak-3", Name: "On a Roll", Description: "Logged your mood 3 days in a row", Icon: "🔥", MinStreak: 3},
	{Id: "streak-7", Name: "Weekly Warrior", Description: "7 days journaling streak!", Icon: "🎯", MinStreak: 7},
	{Id: "streak-30", Name: "Monthly Momentum", Description: "30 consecutive days of journaling", Icon: "🏆", MinStreak: 30},
	{Id: "entries-10", Name: "Deep Diver", Description: "Saved 10 mood entries", Icon: "📘", MinEntries: 10},
	{Id: "entries-50", Name: "Archivist", Description: "Saved 50 mood entries", Icon: "🗂️", MinEntries: 50},
}

// Catalog returns a copy of the badge catalog so callers cannot mutate the
// definitions.
func Catalog() []Badge {
	badges := []Badge{}
	if err := copier.Copy(&badges, &catalog); err != nil {
		// The catalog is a static slice of plain structs, copying it cannot
		// fail at runtime.
		panic(err)
	}
	return badges
}

// BadgeById looks a badge up in the catalog.
func BadgeById(id string) (Badge, bool) {
	for _, b := range catalog {
		if b.Id == id {
			return b, true
		}
	}
	return Badge{}, false
}

// EvaluateBadges returns the badges newly unlocked by the given streak and
// entry count, excluding badges already held. Evaluating twice with
// unchanged inputs returns an empty delta the second time because the first
// evaluation's awards land in held.
func EvaluateBadges(held map[string]bool, streak int, totalEntries int) []Badge {
	unlocked := []Badge{}
	for _, b := range catalog {
		if held[b.Id] {
			continue
		}
		if b.MinStreak > 0 && streak >= b.MinStreak {
			unlocked = append(unlocked, b)
			continue
		}
		if b.MinEntries > 0 && totalEntries >= b.MinEntries {
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}
