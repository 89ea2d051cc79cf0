package engagement

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/taxonomy"
	"github.com/moodtunes/moodtunes-backend/utils"
)

type FeedScope string

const (
	FeedScopeAll       FeedScope = "all"
	FeedScopeFollowing FeedScope = "following"
)

const (
	defaultFeedLimit = 20
	feedLimitCap     = 100
)

type FeedQuery struct {
	Scope    FeedScope
	ViewerId string
	// Optional taxonomy mood category to restrict the feed to.
	Category string
	Cursor   string
	Limit    int
}

type FeedPage struct {
	Entries    []*model.MoodEntry `json:"entries"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// QueryFeed returns shared entries newest first. Private entries never
// appear, not even the viewer's own; profile reads are the path that
// includes those. Entries whose author no longer exists are filtered out.
// Pagination uses a keyset cursor over (createdAt, id), so pages stay
// duplicate-free and gap-free even while new entries are being created.
func (s *Store) QueryFeed(ctx context.Context, query FeedQuery) (*FeedPage, error) {
	if err := sanitizeFeedQuery(&query); err != nil {
		return nil, err
	}

	dbQuery := s.db.WithContext(ctx).Model(&model.MoodEntry{}).
		Joins("INNER JOIN users ON users.id = mood_entries.author_id AND users.deleted_at IS NULL").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Where("mood_entries.shared = ?", true)

	if query.Scope == FeedScopeFollowing {
		dbQuery = dbQuery.Where(
			"mood_entries.author_id IN (?)",
			s.db.Model(&model.UserFollow{}).Select("target_id").Where("user_id = ?", query.ViewerId),
		)
	}

	if query.Category != "" {
		// Category was derived at creation time by the taxonomy mapper, so
		// equality on the stored column matches the mapper's semantics,
		// including the fallback bucket (derived "mixed" means the analysis
		// matched none of the named categories).
		dbQuery = dbQuery.Where("mood_entries.category = ?", query.Category)
	}

	if query.Cursor != "" {
		cursorTime, cursorId, err := decodeFeedCursor(query.Cursor)
		if err != nil {
			return nil, err
		}
		dbQuery = dbQuery.Where(
			"mood_entries.created_at < ? OR (mood_entries.created_at = ? AND mood_entries.id < ?)",
			cursorTime, cursorTime, cursorId,
		)
	}

	var entries []*model.MoodEntry
	if err := dbQuery.
		Order("mood_entries.created_at DESC, mood_entries.id DESC").
		Limit(query.Limit + 1).
		Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failure when querying feed")
	}

	page := &FeedPage{}
	if len(entries) > query.Limit {
		entries = entries[:query.Limit]
		last := entries[len(entries)-1]
		page.NextCursor = encodeFeedCursor(last.CreatedAt, last.Id)
	}
	if err := s.hydrateEntries(ctx, entries, query.ViewerId); err != nil {
		return nil, err
	}
	page.Entries = entries
	return page, nil
}

// QueryProfile returns a user's entries newest first. The profile owner
// sees their own private entries, any other viewer sees shared ones only.
func (s *Store) QueryProfile(ctx context.Context, userId string, viewerId string) ([]*model.MoodEntry, error) {
	var owner model.User
	if s.db.WithContext(ctx).Where("id = ?", userId).First(&owner).RowsAffected != 1 {
		return nil, &utils.NotFoundError{Resource: "user", Id: userId}
	}

	dbQuery := s.db.WithContext(ctx).Model(&model.MoodEntry{}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Where("author_id = ?", userId)
	if userId != viewerId {
		dbQuery = dbQuery.Where("shared = ?", true)
	}

	var entries []*model.MoodEntry
	if err := dbQuery.
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failure when querying profile")
	}
	if err := s.hydrateEntries(ctx, entries, viewerId); err != nil {
		return nil, err
	}
	return entries, nil
}

// hydrateEntries resolves read-time state onto entries: like sets from the
// like store, author display names for entries and comments by an explicit
// join against users. Author display data is never stored on the rows.
func (s *Store) hydrateEntries(ctx context.Context, entries []*model.MoodEntry, viewerId string) error {
	if len(entries) == 0 {
		return nil
	}

	entryIds := make([]string, 0, len(entries))
	authorIdSet := map[string]bool{}
	for _, entry := range entries {
		entryIds = append(entryIds, entry.Id)
		authorIdSet[entry.AuthorId] = true
		for _, comment := range entry.Comments {
			authorIdSet[comment.AuthorId] = true
		}
	}
	authorIds := make([]string, 0, len(authorIdSet))
	for id := range authorIdSet {
		authorIds = append(authorIds, id)
	}

	// Unscoped so comments from since-deleted users still render a name.
	var authors []model.User
	if err := s.db.WithContext(ctx).Unscoped().
		Select("id", "username").
		Where("id IN ?", authorIds).
		Find(&authors).Error; err != nil {
		return errors.Wrap(err, "failure when resolving author names")
	}
	names := make(map[string]string, len(authors))
	for _, author := range authors {
		names[author.Id] = author.Username
	}

	likeSets, err := s.likes.GetLikesBatch(ctx, entryIds)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entry.AuthorName = names[entry.AuthorId]
		entry.Likes = likeSets[entry.Id]
		if entry.Likes == nil {
			entry.Likes = []string{}
		}
		entry.LikedByViewer = containsString(entry.Likes, viewerId)
		for _, comment := range entry.Comments {
			comment.AuthorName = names[comment.AuthorId]
		}
	}
	return nil
}

func sanitizeFeedQuery(query *FeedQuery) error {
	if query.Scope == "" {
		query.Scope = FeedScopeAll
	}
	if query.Scope != FeedScopeAll && query.Scope != FeedScopeFollowing {
		return &utils.ValidationError{Field: "scope", Reason: "must be all or following"}
	}
	if query.Scope == FeedScopeFollowing && query.ViewerId == "" {
		return &utils.ValidationError{Field: "viewerId", Reason: "required for following scope"}
	}
	if query.Category != "" && !taxonomy.KnownMoodCategory(query.Category) {
		return &utils.ValidationError{Field: "category", Reason: "unknown mood category"}
	}
	if query.Limit <= 0 {
		query.Limit = defaultFeedLimit
	}
	if query.Limit > feedLimitCap {
		query.Limit = feedLimitCap
	}
	return nil
}

func encodeFeedCursor(createdAt time.Time, id string) string {
	raw := fmt.Sprintf("%d|%s", createdAt.UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeFeedCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", &utils.ValidationError{Field: "cursor", Reason: "not decodable"}
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", &utils.ValidationError{Field: "cursor", Reason: "malformed"}
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", &utils.ValidationError{Field: "cursor", Reason: "malformed timestamp"}
	}
	return time.Unix(0, nanos).UTC(), parts[1], nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
