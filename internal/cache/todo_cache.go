package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/query"
)

const keyListPrefix = "todo:list:"

// TodoCache caches listing results in Redis. Entries are keyed per user,
// calendar day and query shape, so a key written today can never serve
// tomorrow's listing even if it outlives its TTL budget.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// ListKey builds the cache key for one listing invocation.
func ListKey(userID primitive.ObjectID, asOf query.DateParts, f *query.Filter, sort []query.SortField, page query.Page) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s:%04d-%02d-%02d", keyListPrefix, userID.Hex(), asOf.Year, asOf.Month, asOf.Day)

	if f != nil {
		if f.TitleContains != nil {
			fmt.Fprintf(&b, ":t=%s", strings.ToLower(*f.TitleContains))
		}
		if f.Label != nil {
			fmt.Fprintf(&b, ":l=%s", f.Label.Hex())
		}
	}

	for _, s := range sort {
		fmt.Fprintf(&b, ":s=%s.%s", s.Field, s.Direction)
	}

	fmt.Fprintf(&b, ":p=%d.%d", page.Skip, page.Limit)

	return b.String()
}

// GetList returns the cached connection for key, or ok=false on miss.
func (c *TodoCache) GetList(ctx context.Context, key string) (query.TodoConnection, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return query.TodoConnection{}, false, nil
	}
	if err != nil {
		return query.TodoConnection{}, false, err
	}

	var conn query.TodoConnection
	if err := json.Unmarshal(b, &conn); err != nil {
		return query.TodoConnection{}, false, err
	}

	return conn, true, nil
}

// SetList stores the connection under key.
func (c *TodoCache) SetList(ctx context.Context, key string, conn query.TodoConnection) error {
	b, err := json.Marshal(conn)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// InvalidateUser removes every cached listing for one user (cache
// invalidation on write).
func (c *TodoCache) InvalidateUser(ctx context.Context, userID primitive.ObjectID) error {
	pattern := keyListPrefix + userID.Hex() + ":*"

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}

	return iter.Err()
}
