package data

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ambassador-tracker/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetRepo_CreateFindVerify(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepo(newTestData(t), log.DefaultLogger)
	owner := "uni-1"

	w := &domain.Widget{ID: "w1", UniversityID: &owner, Config: json.RawMessage(`{"selectedColor":"#123456"}`)}
	require.NoError(t, repo.Create(ctx, w))

	found, err := repo.FindByID(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.OwnedBy("uni-1"))
	assert.JSONEq(t, `{"selectedColor":"#123456"}`, string(found.Config))
	assert.False(t, found.Verified)
	assert.Nil(t, found.LastVerifiedAt)

	at := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkVerified(ctx, "w1", "example.com", at))

	found, err = repo.FindByOwner(ctx, "uni-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Verified)
	assert.Equal(t, "example.com", found.LastVerifiedDomain)
	require.NotNil(t, found.LastVerifiedAt)
	assert.True(t, at.Equal(*found.LastVerifiedAt))
}

func TestWidgetRepo_AnonymousAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepo(newTestData(t), log.DefaultLogger)

	require.NoError(t, repo.Create(ctx, &domain.Widget{ID: "anon"}))

	found, err := repo.FindByID(ctx, "anon")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.UniversityID)
	assert.JSONEq(t, `{}`, string(found.Config))

	found, err = repo.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, repo.MarkVerified(ctx, "missing", "x.com", time.Now()), domain.ErrWidgetNotFound)
	assert.ErrorIs(t, repo.UpdateConfig(ctx, "missing", nil), domain.ErrWidgetNotFound)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedWidgetRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	d := newTestData(t)
	d.rdb = rdb

	repo := NewCachedWidgetRepository(newWidgetRepo(d, log.DefaultLogger), NewRedisWidgetCache(d, log.DefaultLogger))
	require.NoError(t, repo.Create(ctx, &domain.Widget{ID: "w1", Config: json.RawMessage(`{"a":1}`)}))
	assert.True(t, mr.Exists(widgetCachePrefix+"w1"))

	found, err := repo.FindByID(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.JSONEq(t, `{"a":1}`, string(found.Config))

	require.NoError(t, repo.MarkVerified(ctx, "w1", "example.com", time.Now()))
	assert.Equal(t, "true", mr.HGet(widgetCachePrefix+"w1", fieldVerified))

	found, err = repo.FindByID(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, found.Verified)

	require.NoError(t, repo.UpdateConfig(ctx, "w1", json.RawMessage(`{"a":2}`)))
	found, err = repo.FindByID(ctx, "w1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(found.Config))
}

func TestCachedWidgetRepository_ConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedWidgetRepository(newWidgetRepo(newTestData(t), log.DefaultLogger), &noopWidgetCache{})
	require.NoError(t, repo.Create(ctx, &domain.Widget{ID: "w1"}))

	var wg sync.WaitGroup
	found := make([]*domain.Widget, 8)
	for i := range found {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found[i], _ = repo.FindByID(ctx, "w1")
		}()
	}
	wg.Wait()

	for _, w := range found {
		require.NotNil(t, w)
		assert.Equal(t, "w1", w.ID)
	}
	found[0].LastVerifiedDomain = "mutated"
	assert.Empty(t, found[1].LastVerifiedDomain)
}

// A fill from a read taken before MarkVerified lands after the writer
// cached the verified row.
func TestRedisWidgetCache_KeepsNewerEntry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	cache := NewRedisWidgetCache(&Data{rdb: rdb}, log.DefaultLogger)
	before := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	after := before.Add(time.Second)

	stale := &domain.Widget{ID: "w1", CreatedAt: before, UpdatedAt: before}
	fresh := &domain.Widget{ID: "w1", Verified: true, LastVerifiedDomain: "example.com", CreatedAt: before, UpdatedAt: after}

	require.NoError(t, cache.Set(ctx, fresh))
	require.NoError(t, cache.Set(ctx, stale))

	got, err := cache.Get(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Verified)
	assert.Greater(t, mr.TTL(widgetCachePrefix+"w1"), time.Duration(0))

	newer := *fresh
	newer.UpdatedAt = after.Add(time.Second)
	newer.LastVerifiedDomain = "other.org"
	require.NoError(t, cache.Set(ctx, &newer))
	got, err = cache.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "other.org", got.LastVerifiedDomain)
}

func TestCachedWidgetRepository_CancelledCallerStillReads(t *testing.T) {
	repo := NewCachedWidgetRepository(newWidgetRepo(newTestData(t), log.DefaultLogger), &noopWidgetCache{})
	require.NoError(t, repo.Create(context.Background(), &domain.Widget{ID: "w1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	found, err := repo.FindByID(ctx, "w1")

	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "w1", found.ID)
}

func TestRedisWidgetCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	cache := NewRedisWidgetCache(&Data{rdb: rdb}, log.DefaultLogger)
	owner := "uni-1"
	at := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Set(ctx, &domain.Widget{ID: "anon", CreatedAt: at, UpdatedAt: at}))
	require.NoError(t, cache.Set(ctx, &domain.Widget{
		ID: "owned", UniversityID: &owner, Config: json.RawMessage(`{"a":1}`),
		Verified: true, LastVerifiedAt: &at, LastVerifiedDomain: "example.com",
		CreatedAt: at, UpdatedAt: at,
	}))
	assert.Equal(t, "true", mr.HGet(widgetCachePrefix+"owned", fieldVerified))
	assert.Greater(t, mr.TTL(widgetCachePrefix+"owned"), time.Duration(0))

	anon, err := cache.Get(ctx, "anon")
	require.NoError(t, err)
	require.NotNil(t, anon)
	assert.Nil(t, anon.UniversityID)
	assert.Nil(t, anon.LastVerifiedAt)
	assert.JSONEq(t, `{}`, string(anon.Config))

	owned, err := cache.Get(ctx, "owned")
	require.NoError(t, err)
	require.NotNil(t, owned)
	assert.True(t, owned.OwnedBy("uni-1"))
	assert.True(t, owned.Verified)
	require.NotNil(t, owned.LastVerifiedAt)
	assert.True(t, at.Equal(*owned.LastVerifiedAt))
	assert.True(t, at.Equal(owned.CreatedAt))
}

func TestRedisWidgetCache_FailsOpen(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	cache := NewRedisWidgetCache(&Data{rdb: rdb}, log.DefaultLogger)

	// Wrong key type reads as a miss.
	require.NoError(t, mr.Set(widgetCachePrefix+"bad", "not a hash"))
	w, err := cache.Get(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, w)

	mr.HSet(widgetCachePrefix+"corrupt", fieldVerified, "maybe")
	w, err = cache.Get(ctx, "corrupt")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.False(t, mr.Exists(widgetCachePrefix+"corrupt"))

	mr.Close()
	w, err = cache.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, cache.Set(ctx, &domain.Widget{ID: "w1"}))
}

func TestNewRedisWidgetCache_NoopWithoutRedis(t *testing.T) {
	cache := NewRedisWidgetCache(&Data{}, log.DefaultLogger)

	_, ok := cache.(*noopWidgetCache)
	assert.True(t, ok)
}
