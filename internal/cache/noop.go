package cache

import (
	"context"
	"strconv"
	"time"
)

// NoopMemberCache always misses. Used when redis is not configured.
type NoopMemberCache struct{}

func NewNoopMemberCache() *NoopMemberCache { return &NoopMemberCache{} }

func (NoopMemberCache) Get(ctx context.Context, key string) (*MemberCacheResult, error) {
	return nil, ErrCacheMiss
}

func (NoopMemberCache) Set(ctx context.Context, key string, result *MemberCacheResult, ttl time.Duration) error {
	return nil
}

func (NoopMemberCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (NoopMemberCache) BuildKeyByUUID(uuid string) string { return "member:uuid:" + uuid }

func (NoopMemberCache) BuildKeyByID(id int64) string {
	return "member:id:" + strconv.FormatInt(id, 10)
}

func (NoopMemberCache) Close() error { return nil }
