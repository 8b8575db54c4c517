package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	goredis "github.com/redis/go-redis/v9"
)

// DirectoryBackend is the authoritative directory behind the cache.
type DirectoryBackend interface {
	Lookup(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, error)
}

// CachedDirectory is a read-through cache in front of the directory. Only
// hits are cached; a miss always goes to the backend. Cache errors are
// logged and the backend answers instead.
type CachedDirectory struct {
	client  *goredis.Client
	backend DirectoryBackend
	ttl     time.Duration
	logger  *slog.Logger
}

func NewCachedDirectory(client *goredis.Client, backend DirectoryBackend, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{client: client, backend: backend, ttl: ttl, logger: logger}
}

// targetCacheKey length-prefixes the primary key so keys containing the
// separator cannot collide.
func targetCacheKey(key domain.TargetKey) string {
	return fmt.Sprintf("targets:%d:%s:%s", len(key.PrimaryKey), key.PrimaryKey, key.SecondaryKey)
}

func (c *CachedDirectory) Lookup(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, error) {
	if rec, ok := c.get(ctx, key); ok {
		return rec, nil
	}

	rec, err := c.backend.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, key, rec); err != nil {
		c.logger.Warn("target cache write failed", slog.String("target", key.String()), slog.Any("error", err))
	}
	return rec, nil
}

// Invalidate drops the cached record for key.
func (c *CachedDirectory) Invalidate(ctx context.Context, key domain.TargetKey) error {
	const op = "redis.CachedDirectory.Invalidate"

	if err := c.client.Del(ctx, targetCacheKey(key)).Err(); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (c *CachedDirectory) get(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, bool) {
	data, err := c.client.Get(ctx, targetCacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("target cache read failed", slog.String("target", key.String()), slog.Any("error", err))
		}
		return nil, false
	}

	var rec domain.DirectoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Warn("target cache entry corrupt", slog.String("target", key.String()), slog.Any("error", err))
		return nil, false
	}
	return &rec, true
}

func (c *CachedDirectory) set(ctx context.Context, key domain.TargetKey, rec *domain.DirectoryRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, targetCacheKey(key), b, c.ttl).Err()
}
