package gamify

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/utils"
)

// Result is the gamification delta produced by one Apply call.
type Result struct {
	Streak    int     `json:"streak"`
	NewBadges []Badge `json:"newBadges"`
}

// Engine derives gamification state from a user's entry timestamps and
// persists it. Apply is idempotent and replay-safe: streak is recomputed
// from scratch and badge awards are conflict-ignoring inserts.
type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// NewEngineAt pins the clock, used by tests.
func NewEngineAt(db *gorm.DB, now func() time.Time) *Engine {
	return &Engine{db: db, now: now}
}

// Apply recomputes the user's streak, stores it, awards any newly unlocked
// badges and returns the delta.
func (e *Engine) Apply(ctx context.Context, userId string) (*Result, error) {
	var user model.User
	queryResult := e.db.WithContext(ctx).Where("id = ?", userId).First(&user)
	if queryResult.RowsAffected != 1 {
		return nil, &utils.NotFoundError{Resource: "user", Id: userId}
	}

	var entries []*model.MoodEntry
	if err := e.db.WithContext(ctx).
		Where("author_id = ?", userId).
		Order("created_at desc").
		Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failure when loading entries for gamification")
	}

	streak := RecomputeStreak(entries, e.now())
	if err := e.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		UpdateColumn("current_streak", streak).Error; err != nil {
		return nil, errors.Wrap(err, "failure when storing streak")
	}

	var heldRows []model.UserBadge
	if err := e.db.WithContext(ctx).Where("user_id = ?", userId).Find(&heldRows).Error; err != nil {
		return nil, errors.Wrap(err, "failure when loading held badges")
	}
	held := make(map[string]bool, len(heldRows))
	for _, row := range heldRows {
		held[row.BadgeId] = true
	}

	newBadges := EvaluateBadges(held, streak, len(entries))
	if len(newBadges) > 0 {
		awards := make([]model.UserBadge, 0, len(newBadges))
		unlockedAt := e.now()
		for _, b := range newBadges {
			awards = append(awards, model.UserBadge{
				UserId:     userId,
				BadgeId:    b.Id,
				UnlockedAt: unlockedAt,
			})
		}
		// Conflict-ignoring insert keeps a concurrent or replayed Apply from
		// double-awarding.
		if err := e.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&awards).Error; err != nil {
			return nil, errors.Wrap(err, "failure when awarding badges")
		}
	}

	return &Result{Streak: streak, NewBadges: newBadges}, nil
}
