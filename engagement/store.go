package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moodtunes/moodtunes-backend/gamify"
	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/taxonomy"
	"github.com/moodtunes/moodtunes-backend/utils"
)

/*

Store owns mood-entry records and their engagement state.

Entries, comments and the follow/badge relations live in the database.
The like sets live in the Redis LikeStatusStore so that concurrent toggles
serialize per entry instead of racing through read-modify-write cycles on a
whole row. The database stays the source of truth for everything else; no
process-wide cache sits in front of it.

*/

type Store struct {
	db     *gorm.DB
	likes  *utils.LikeStatusStore
	gamify *gamify.Engine
}

func NewStore(db *gorm.DB, likes *utils.LikeStatusStore, engine *gamify.Engine) *Store {
	return &Store{db: db, likes: likes, gamify: engine}
}

type CreateEntryInput struct {
	AuthorId     string
	RawText      string
	MoodAnalysis string
	Category     string
	Song         model.Song
	Shared       bool
}

// CreateEntry persists a new mood entry and synchronously recomputes the
// author's gamification state. The gamify delta is part of the return value
// so the caller observes new badges and the updated streak, it is not a
// silent background effect.
func (s *Store) CreateEntry(ctx context.Context, input CreateEntryInput) (*model.MoodEntry, *gamify.Result, error) {
	if strings.TrimSpace(input.RawText) == "" {
		return nil, nil, &utils.ValidationError{Field: "rawText", Reason: "must not be empty"}
	}
	if input.Category == "" {
		input.Category = taxonomy.MapMoodCategory(input.MoodAnalysis)
	} else if !taxonomy.KnownMoodCategory(input.Category) {
		return nil, nil, &utils.ValidationError{Field: "category", Reason: "unknown mood category"}
	}

	var author model.User
	if s.db.WithContext(ctx).Where("id = ?", input.AuthorId).First(&author).RowsAffected != 1 {
		return nil, nil, &utils.NotFoundError{Resource: "user", Id: input.AuthorId}
	}

	entry := &model.MoodEntry{
		Id:           uuid.New().String(),
		AuthorId:     input.AuthorId,
		RawText:      input.RawText,
		MoodAnalysis: input.MoodAnalysis,
		Category:     input.Category,
		Song:         input.Song,
		Shared:       input.Shared,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failure when creating mood entry")
	}

	result, err := s.gamify.Apply(ctx, input.AuthorId)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failure when recomputing gamification state")
	}

	entry.Likes = []string{}
	entry.AuthorName = author.Username
	return entry, result, nil
}

// ShareEntry flips an entry from private to shared. The transition is
// one-way, sharing an already-shared entry is a no-op. Entries that do not
// exist and entries owned by someone else are indistinguishable to the
// caller.
func (s *Store) ShareEntry(ctx context.Context, entryId string, userId string) (*model.MoodEntry, error) {
	var entry model.MoodEntry
	if s.db.WithContext(ctx).Where("id = ?", entryId).First(&entry).RowsAffected != 1 {
		return nil, &utils.NotFoundError{Resource: "entry", Id: entryId}
	}
	if entry.AuthorId != userId {
		return nil, &utils.NotFoundError{Resource: "entry", Id: entryId}
	}
	if !entry.Shared {
		if err := s.db.WithContext(ctx).Model(&model.MoodEntry{}).
			Where("id = ?", entryId).
			UpdateColumn("shared", true).Error; err != nil {
			return nil, errors.Wrap(err, "failure when sharing entry")
		}
		entry.Shared = true
	}
	return &entry, nil
}

// ToggleLike performs a strict set-XOR of userId on the entry's like set
// and returns the resulting set. Toggling twice round-trips back to the
// original set; concurrent toggles from different users all land.
func (s *Store) ToggleLike(ctx context.Context, entryId string, userId string) ([]string, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.MoodEntry{}).
		Where("id = ?", entryId).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "failure when checking entry")
	}
	if count != 1 {
		return nil, &utils.NotFoundError{Resource: "entry", Id: entryId}
	}

	if _, err := s.likes.ToggleLike(ctx, entryId, userId); err != nil {
		return nil, err
	}
	return s.likes.GetLikes(ctx, entryId)
}

// AddComment appends a comment to an entry. Comments are append-only and
// keep insertion order; id and timestamp are server assigned.
func (s *Store) AddComment(ctx context.Context, entryId string, authorId string, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &utils.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.MoodEntry{}).
		Where("id = ?", entryId).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "failure when checking entry")
	}
	if count != 1 {
		return nil, &utils.NotFoundError{Resource: "entry", Id: entryId}
	}

	var author model.User
	if s.db.WithContext(ctx).Where("id = ?", authorId).First(&author).RowsAffected != 1 {
		return nil, &utils.NotFoundError{Resource: "user", Id: authorId}
	}

	comment := &model.Comment{
		Id:        uuid.New().String(),
		EntryId:   entryId,
		AuthorId:  authorId,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, errors.Wrap(err, "failure when creating comment")
	}
	comment.AuthorName = author.Username
	return comment, nil
}

// Follow adds targetId to userId's following set. A duplicate follow is a
// uniqueness violation surfaced as ConflictError.
func (s *Store) Follow(ctx context.Context, userId string, targetId string) error {
	if userId == targetId {
		return &utils.ValidationError{Field: "targetId", Reason: "cannot follow yourself"}
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", targetId).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failure when checking user")
	}
	if count != 1 {
		return &utils.NotFoundError{Resource: "user", Id: targetId}
	}

	follow := model.UserFollow{UserId: userId, TargetId: targetId, CreatedAt: time.Now()}
	queryResult := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow)
	if queryResult.Error != nil {
		return errors.Wrap(queryResult.Error, "failure when creating follow")
	}
	if queryResult.RowsAffected == 0 {
		return &utils.ConflictError{Reason: "already following this user"}
	}
	return nil
}

// Unfollow removes targetId from userId's following set. Unfollowing a user
// that was never followed is a no-op.
func (s *Store) Unfollow(ctx context.Context, userId string, targetId string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", targetId).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failure when checking user")
	}
	if count != 1 {
		return &utils.NotFoundError{Resource: "user", Id: targetId}
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ?", userId, targetId).
		Delete(&model.UserFollow{}).Error; err != nil {
		return errors.Wrap(err, "failure when deleting follow")
	}
	return nil
}
