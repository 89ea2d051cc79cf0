package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/utils"
)

var feedBase = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func entryIds(entries []*model.MoodEntry) []string {
	ids := []string{}
	for _, entry := range entries {
		ids = append(ids, entry.Id)
	}
	return ids
}

func TestQueryFeed_SharedNewestFirst(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedEntry(t, db, "a-1", "alice", true, "happy", feedBase)
	seedEntry(t, db, "a-2", "alice", true, "sad", feedBase.Add(2*time.Minute))
	seedEntry(t, db, "a-private", "alice", false, "happy", feedBase.Add(3*time.Minute))
	seedEntry(t, db, "b-1", "bob", true, "calm", feedBase.Add(time.Minute))

	// Private entries stay out of the feed even for their own author.
	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-2", "b-1", "a-1"}, entryIds(page.Entries))
	assert.Empty(t, page.NextCursor)

	first := page.Entries[0]
	assert.Equal(t, "name-alice", first.AuthorName)
	assert.Equal(t, []string{}, first.Likes)
	assert.False(t, first.LikedByViewer)
}

func TestQueryFeed_FollowingScope(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "carol")
	seedEntry(t, db, "b-1", "bob", true, "happy", feedBase)
	seedEntry(t, db, "c-1", "carol", true, "happy", feedBase.Add(time.Minute))
	assert.Nil(t, store.Follow(context.Background(), "alice", "bob"))

	page, err := store.QueryFeed(context.Background(), FeedQuery{
		Scope:    FeedScopeFollowing,
		ViewerId: "alice",
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"b-1"}, entryIds(page.Entries))

	// Following scope without a viewer makes no sense.
	_, err = store.QueryFeed(context.Background(), FeedQuery{Scope: FeedScopeFollowing})
	assert.True(t, utils.IsValidation(err))
}

func TestQueryFeed_CategoryFilter(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedEntry(t, db, "a-1", "alice", true, "happy", feedBase)
	seedEntry(t, db, "a-2", "alice", true, "sad", feedBase.Add(time.Minute))
	seedEntry(t, db, "a-3", "alice", true, "mixed", feedBase.Add(2*time.Minute))

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Category: "sad"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-2"}, entryIds(page.Entries))

	// The fallback bucket is filterable like any named category.
	page, err = store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Category: "mixed"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-3"}, entryIds(page.Entries))

	_, err = store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Category: "euphoric"})
	assert.True(t, utils.IsValidation(err))
}

func TestQueryFeed_CursorPagination(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedEntry(t, db, "e-1", "alice", true, "happy", feedBase.Add(1*time.Minute))
	seedEntry(t, db, "e-2", "alice", true, "happy", feedBase.Add(2*time.Minute))
	seedEntry(t, db, "e-3", "alice", true, "happy", feedBase.Add(3*time.Minute))
	seedEntry(t, db, "e-4", "alice", true, "happy", feedBase.Add(4*time.Minute))
	seedEntry(t, db, "e-5", "alice", true, "happy", feedBase.Add(5*time.Minute))

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Limit: 2})
	assert.Nil(t, err)
	assert.Equal(t, []string{"e-5", "e-4"}, entryIds(page.Entries))
	assert.NotEmpty(t, page.NextCursor)

	// An entry created after the first page was read must not shift or
	// duplicate anything on subsequent pages.
	seedEntry(t, db, "e-6", "alice", true, "happy", feedBase.Add(6*time.Minute))

	page, err = store.QueryFeed(context.Background(), FeedQuery{
		ViewerId: "alice", Limit: 2, Cursor: page.NextCursor,
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"e-3", "e-2"}, entryIds(page.Entries))
	assert.NotEmpty(t, page.NextCursor)

	page, err = store.QueryFeed(context.Background(), FeedQuery{
		ViewerId: "alice", Limit: 2, Cursor: page.NextCursor,
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"e-1"}, entryIds(page.Entries))
	assert.Empty(t, page.NextCursor)

	_, err = store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Cursor: "not base64!"})
	assert.True(t, utils.IsValidation(err))
}

func TestQueryFeed_TiedTimestampsPaginateById(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	// Identical createdAt, the id breaks the tie.
	seedEntry(t, db, "e-a", "alice", true, "happy", feedBase)
	seedEntry(t, db, "e-b", "alice", true, "happy", feedBase)
	seedEntry(t, db, "e-c", "alice", true, "happy", feedBase)

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice", Limit: 2})
	assert.Nil(t, err)
	assert.Equal(t, []string{"e-c", "e-b"}, entryIds(page.Entries))

	page, err = store.QueryFeed(context.Background(), FeedQuery{
		ViewerId: "alice", Limit: 2, Cursor: page.NextCursor,
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"e-a"}, entryIds(page.Entries))
}

func TestQueryFeed_DeletedAuthorFilteredOut(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedEntry(t, db, "a-1", "alice", true, "happy", feedBase)
	seedEntry(t, db, "b-1", "bob", true, "happy", feedBase.Add(time.Minute))

	assert.Nil(t, db.Delete(&model.User{Id: "bob"}).Error)

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-1"}, entryIds(page.Entries))
}

func TestQueryFeed_CommentsHydrated(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "carol")
	seedEntry(t, db, "a-1", "alice", true, "happy", feedBase)

	_, err := store.AddComment(context.Background(), "a-1", "bob", "first")
	assert.Nil(t, err)
	_, err = store.AddComment(context.Background(), "a-1", "carol", "second")
	assert.Nil(t, err)

	// A comment author deleting their account must not blank out the name on
	// their old comments.
	assert.Nil(t, db.Delete(&model.User{Id: "carol"}).Error)

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "bob"})
	assert.Nil(t, err)
	assert.Len(t, page.Entries, 1)
	comments := page.Entries[0].Comments
	assert.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "name-bob", comments[0].AuthorName)
	assert.Equal(t, "name-carol", comments[1].AuthorName)
}

func TestQueryFeed_LikedByViewer(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedEntry(t, db, "a-1", "alice", true, "happy", feedBase)

	_, err := store.ToggleLike(context.Background(), "a-1", "bob")
	assert.Nil(t, err)

	page, err := store.QueryFeed(context.Background(), FeedQuery{ViewerId: "bob"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"bob"}, page.Entries[0].Likes)
	assert.True(t, page.Entries[0].LikedByViewer)

	page, err = store.QueryFeed(context.Background(), FeedQuery{ViewerId: "alice"})
	assert.Nil(t, err)
	assert.False(t, page.Entries[0].LikedByViewer)
}

func TestQueryProfile_OwnerSeesPrivateEntries(t *testing.T) {
	store, db, _ := createTempStore(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedEntry(t, db, "a-shared", "alice", true, "happy", feedBase)
	seedEntry(t, db, "a-private", "alice", false, "sad", feedBase.Add(time.Minute))

	entries, err := store.QueryProfile(context.Background(), "alice", "alice")
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-private", "a-shared"}, entryIds(entries))

	entries, err = store.QueryProfile(context.Background(), "alice", "bob")
	assert.Nil(t, err)
	assert.Equal(t, []string{"a-shared"}, entryIds(entries))

	_, err = store.QueryProfile(context.Background(), "ghost", "bob")
	assert.True(t, utils.IsNotFound(err))
}
