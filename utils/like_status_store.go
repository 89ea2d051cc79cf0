package utils

import (
	"context"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

/*

LikeStatusStore keeps the per-entry like sets in Redis.

Each mood entry owns one Redis set keyed by entry id whose members are the
ids of users that currently like it. A like toggle is a strict set-XOR
executed server side in a Lua script, so two concurrent toggles from
different users both land and a double toggle from the same user always
round-trips back to the original set.

*/

const likeKeyPrefix = "moodtunes:entry_likes:"

var toggleLikeScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
	return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
return 1
`)

type LikeStatusStore struct {
	client *redis.Client
}

func NewLikeStatusStore(addr string, password string, db int) *LikeStatusStore {
	return &LikeStatusStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewLikeStatusStoreFromClient wraps an existing client, used by tests.
func NewLikeStatusStoreFromClient(client *redis.Client) *LikeStatusStore {
	return &LikeStatusStore{client: client}
}

func likeKey(entryId string) string {
	return likeKeyPrefix + entryId
}

// ToggleLike flips userId's membership in the entry's like set and reports
// whether the user likes the entry after the toggle.
func (s *LikeStatusStore) ToggleLike(ctx context.Context, entryId string, userId string) (bool, error) {
	liked, err := toggleLikeScript.Run(ctx, s.client, []string{likeKey(entryId)}, userId).Int()
	if err != nil {
		return false, errors.Wrap(err, "failure when toggling like")
	}
	return liked == 1, nil
}

// GetLikes returns the ids of all users currently liking the entry, sorted
// so callers see a deterministic set representation.
func (s *LikeStatusStore) GetLikes(ctx context.Context, entryId string) ([]string, error) {
	members, err := s.client.SMembers(ctx, likeKey(entryId)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failure when reading like set")
	}
	sort.Strings(members)
	return members, nil
}

// GetLikesBatch reads the like sets for many entries in one round trip.
func (s *LikeStatusStore) GetLikesBatch(ctx context.Context, entryIds []string) (map[string][]string, error) {
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringSliceCmd, len(entryIds))
	for _, id := range entryIds {
		cmds[id] = pipe.SMembers(ctx, likeKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failure when reading like sets")
	}
	result := make(map[string][]string, len(entryIds))
	for id, cmd := range cmds {
		members := cmd.Val()
		sort.Strings(members)
		result[id] = members
	}
	return result, nil
}

// HasLiked is the single source of truth for "has this viewer liked this
// entry"; like counts are always len of the same set, never tracked apart.
func (s *LikeStatusStore) HasLiked(ctx context.Context, entryId string, userId string) (bool, error) {
	liked, err := s.client.SIsMember(ctx, likeKey(entryId), userId).Result()
	if err != nil {
		return false, errors.Wrap(err, "failure when checking like status")
	}
	return liked, nil
}
