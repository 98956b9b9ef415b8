package cache

import (
	"context"
	"time"

	"github.com/AC-trading/ac-trading/internal/domain"
)

type MemberCacheResult struct {
	Member domain.Member `json:"member"`
}

// MemberCache caches member lookups keyed by uuid or numeric id, so the
// websocket handshake and per-message sender lookups skip the database.
type MemberCache interface {
	Get(ctx context.Context, key string) (*MemberCacheResult, error)
	Set(ctx context.Context, key string, result *MemberCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByUUID(uuid string) string
	BuildKeyByID(id int64) string
	Close() error
}
