package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	loadHistoryPrefix = "widget:loads:"
	loadHistoryTTL    = 30 * 24 * time.Hour
)

// Compile-time interface checks
var (
	_ domain.LoadHistory = (*MemoryLoadHistory)(nil)
	_ domain.LoadHistory = (*RedisLoadHistory)(nil)
)

// NewLoadHistory selects the load history backend. The Redis backend is
// used only when configured and reachable; otherwise loads stay in memory
// and are lost on restart.
func NewLoadHistory(c *conf.Tracking, data *Data, logger log.Logger) domain.LoadHistory {
	if c != nil && c.LoadHistory == "redis" {
		if data != nil && data.rdb != nil {
			return NewRedisLoadHistory(data.rdb, logger)
		}
		log.NewHelper(logger).Warn("redis load history requested but redis is disabled, using memory")
	}
	return NewMemoryLoadHistory()
}

// MemoryLoadHistory keeps a bounded, newest-first list per widget.
type MemoryLoadHistory struct {
	mu    sync.RWMutex
	loads map[string][]domain.IntegrationLoad
}

func NewMemoryLoadHistory() *MemoryLoadHistory {
	return &MemoryLoadHistory{loads: make(map[string][]domain.IntegrationLoad)}
}

func (h *MemoryLoadHistory) Append(_ context.Context, widgetID string, load domain.IntegrationLoad) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.loads[widgetID]
	next := make([]domain.IntegrationLoad, 0, min(len(cur)+1, domain.LoadHistorySize))
	next = append(next, load)
	for _, l := range cur {
		if len(next) == domain.LoadHistorySize {
			break
		}
		next = append(next, l)
	}
	h.loads[widgetID] = next
	return nil
}

func (h *MemoryLoadHistory) Recent(_ context.Context, widgetID string) ([]domain.IntegrationLoad, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cur := h.loads[widgetID]
	out := make([]domain.IntegrationLoad, len(cur))
	copy(out, cur)
	return out, nil
}

// RedisLoadHistory stores the list in Redis so it survives restarts and is
// shared between replicas.
type RedisLoadHistory struct {
	rdb *redis.Client
	log *log.Helper
}

func NewRedisLoadHistory(rdb *redis.Client, logger log.Logger) *RedisLoadHistory {
	return &RedisLoadHistory{
		rdb: rdb,
		log: log.NewHelper(logger),
	}
}

func (h *RedisLoadHistory) key(widgetID string) string {
	return loadHistoryPrefix + widgetID
}

func (h *RedisLoadHistory) Append(ctx context.Context, widgetID string, load domain.IntegrationLoad) error {
	data, err := json.Marshal(load)
	if err != nil {
		return err
	}

	key := h.key(widgetID)
	pipe := h.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, domain.LoadHistorySize-1)
	pipe.Expire(ctx, key, loadHistoryTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (h *RedisLoadHistory) Recent(ctx context.Context, widgetID string) ([]domain.IntegrationLoad, error) {
	items, err := h.rdb.LRange(ctx, h.key(widgetID), 0, domain.LoadHistorySize-1).Result()
	if err != nil {
		return nil, err
	}

	loads := make([]domain.IntegrationLoad, 0, len(items))
	for _, item := range items {
		var l domain.IntegrationLoad
		if err := json.Unmarshal([]byte(item), &l); err != nil {
			h.log.WithContext(ctx).Warnf("skipping malformed load entry: %v", err)
			continue
		}
		loads = append(loads, l)
	}
	return loads, nil
}
