package data

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix = "refresh:"
	permsPrefix   = "perms:"
	streamVotes   = "elections.votes"

	permsTTL = 5 * time.Minute
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// Refresh tokens are allowlisted by jti so logout can revoke them.

func SetRefreshToken(ctx context.Context, rdb *redis.Client, jti string, userID uint64, ttl time.Duration) error {
	return rdb.Set(ctx, refreshPrefix+jti, userID, ttl).Err()
}

func RefreshTokenUser(ctx context.Context, rdb *redis.Client, jti string) (uint64, error) {
	return rdb.Get(ctx, refreshPrefix+jti).Uint64()
}

func DelRefreshToken(ctx context.Context, rdb *redis.Client, jti string) error {
	return rdb.Del(ctx, refreshPrefix+jti).Err()
}

// Role permission sets are static seed data, so a short TTL cache in front
// of the role_permissions join is safe.

func CacheRolePermissions(ctx context.Context, rdb *redis.Client, roleKey string, keys []string) {
	if rdb == nil {
		return
	}
	_ = rdb.Set(ctx, permsPrefix+roleKey, strings.Join(keys, ","), permsTTL).Err()
}

func CachedRolePermissions(ctx context.Context, rdb *redis.Client, roleKey string) ([]string, bool) {
	if rdb == nil {
		return nil, false
	}
	v, err := rdb.Get(ctx, permsPrefix+roleKey).Result()
	if err != nil || v == "" {
		return nil, false
	}
	return strings.Split(v, ","), true
}

// PublishVoteEvent appends a cast ballot to the vote event stream.
// Best-effort: a stream failure never fails the vote.
func PublishVoteEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) {
	if rdb == nil {
		return
	}
	if _, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamVotes,
		Values: payload,
	}).Result(); err != nil {
		log.Printf("vote event publish failed: %v", err)
	}
}
