package data

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	widgetCachePrefix = "widget:"
	widgetCacheTTL    = 10 * time.Minute
)

// Hash fields of a cached widget.
const (
	fieldOwner          = "owner"
	fieldConfig         = "config"
	fieldVerified       = "verified"
	fieldVerifiedAt     = "verified_at"
	fieldVerifiedDomain = "verified_domain"
	fieldCreatedAt      = "created_at"
	fieldUpdatedAt      = "updated_at"
)

// WidgetCache is a best-effort lookaside cache for widgets. Get returns
// nil, nil on a miss and implementations never fail the caller.
type WidgetCache interface {
	Get(ctx context.Context, id string) (*domain.Widget, error)
	Set(ctx context.Context, w *domain.Widget) error
	Invalidate(ctx context.Context, id string) error
}

var (
	_ WidgetCache = (*RedisWidgetCache)(nil)
	_ WidgetCache = (*noopWidgetCache)(nil)
)

// RedisWidgetCache keeps each widget in a Redis hash under widget:<id>.
type RedisWidgetCache struct {
	rdb *redis.Client
	log *log.Helper
}

// NewRedisWidgetCache returns a no-op cache when Redis is not configured.
func NewRedisWidgetCache(data *Data, logger log.Logger) WidgetCache {
	if data == nil || data.rdb == nil {
		return &noopWidgetCache{}
	}
	return &RedisWidgetCache{
		rdb: data.rdb,
		log: log.NewHelper(log.With(logger, "module", "data/widget_cache")),
	}
}

func widgetKey(id string) string {
	return widgetCachePrefix + id
}

func (c *RedisWidgetCache) Get(ctx context.Context, id string) (*domain.Widget, error) {
	fields, err := c.rdb.HGetAll(ctx, widgetKey(id)).Result()
	if err != nil {
		c.log.WithContext(ctx).Warnf("widget cache read failed for %s: %v", id, err)
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, nil
	}

	w, err := widgetFromHash(id, fields)
	if err != nil {
		c.log.WithContext(ctx).Warnf("evicting corrupt widget cache entry %s: %v", id, err)
		_ = c.Invalidate(ctx, id)
		return nil, nil
	}
	return w, nil
}

// Set replaces the cached hash and its expiry in one transaction so a
// reader never sees a partial widget. An entry with a newer updated_at is
// kept: a fill from a read that raced a write must not overwrite the row
// the writer cached.
func (c *RedisWidgetCache) Set(ctx context.Context, w *domain.Widget) error {
	key := widgetKey(w.ID)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, fieldUpdatedAt).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cached, perr := time.Parse(time.RFC3339Nano, raw); perr == nil && cached.After(w.UpdatedAt) {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, widgetToHash(w))
			pipe.Expire(ctx, key, widgetCacheTTL)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		// A concurrent Set won; its row is at least as recent as the one it saw.
		c.log.WithContext(ctx).Debugf("widget cache write for %s lost a race", w.ID)
	case err != nil:
		c.log.WithContext(ctx).Warnf("widget cache write failed for %s: %v", w.ID, err)
	}
	return nil
}

func (c *RedisWidgetCache) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, widgetKey(id)).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("widget cache invalidation failed for %s: %v", id, err)
	}
	return nil
}

func widgetToHash(w *domain.Widget) map[string]any {
	config := w.Config
	if len(config) == 0 {
		config = json.RawMessage(`{}`)
	}
	h := map[string]any{
		fieldConfig:         string(config),
		fieldVerified:       strconv.FormatBool(w.Verified),
		fieldVerifiedDomain: w.LastVerifiedDomain,
		fieldCreatedAt:      w.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:      w.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if w.UniversityID != nil {
		h[fieldOwner] = *w.UniversityID
	}
	if w.LastVerifiedAt != nil {
		h[fieldVerifiedAt] = w.LastVerifiedAt.UTC().Format(time.RFC3339Nano)
	}
	return h
}

func widgetFromHash(id string, h map[string]string) (*domain.Widget, error) {
	verified, err := strconv.ParseBool(h[fieldVerified])
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, h[fieldCreatedAt])
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339Nano, h[fieldUpdatedAt])
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(h[fieldConfig])) {
		return nil, domain.ErrInvalidConfig
	}

	w := &domain.Widget{
		ID:                 id,
		Config:             json.RawMessage(h[fieldConfig]),
		Verified:           verified,
		LastVerifiedDomain: h[fieldVerifiedDomain],
		CreatedAt:          created,
		UpdatedAt:          updated,
	}
	if owner, ok := h[fieldOwner]; ok {
		w.UniversityID = &owner
	}
	if raw, ok := h[fieldVerifiedAt]; ok {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		w.LastVerifiedAt = &at
	}
	return w, nil
}

type noopWidgetCache struct{}

func (noopWidgetCache) Get(context.Context, string) (*domain.Widget, error) { return nil, nil }
func (noopWidgetCache) Set(context.Context, *domain.Widget) error           { return nil }
func (noopWidgetCache) Invalidate(context.Context, string) error            { return nil }
