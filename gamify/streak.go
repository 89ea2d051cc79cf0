package gamify

import (
	"time"

	"github.com/moodtunes/moodtunes-backend/model"
)

// RecomputeStreak counts the consecutive calendar days with at least one
// entry, ending today or yesterday relative to now. It is a full
// recomputation from the entry timestamps every time, never an incremental
// counter, so backfilled or out-of-order entries cannot leave the stored
// streak drifting.
func RecomputeStreak(entries []*model.MoodEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	// Collapse to distinct calendar days in now's location.
	days := map[string]bool{}
	for _, entry := range entries {
		days[dayKey(entry.CreatedAt.In(now.Location()))] = true
	}

	// An entry today, or the most recent entry being yesterday, keeps the
	// streak alive. Older gaps break the chain.
	cursor := now
	if !days[dayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
		if !days[dayKey(cursor)] {
			return 0
		}
	}

	streak := 0
	for days[dayKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
