package data

import (
	"context"
	"encoding/json"
	"time"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/singleflight"
)

// Compile-time interface check
var _ domain.WidgetRepository = (*CachedWidgetRepository)(nil)

// CachedWidgetRepository decorates the widget repository with a read-through
// cache. Every beacon looks its widget up, so FindByID is the hot path.
// Concurrent misses for one widget share a single database read. Writes
// store the committed row; the cache never replaces a row with an older one.
type CachedWidgetRepository struct {
	repo  *widgetRepo
	cache WidgetCache
	reads singleflight.Group
}

// NewCachedWidgetRepository creates a new cached repository wrapper.
func NewCachedWidgetRepository(repo *widgetRepo, cache WidgetCache) domain.WidgetRepository {
	return &CachedWidgetRepository{
		repo:  repo,
		cache: cache,
	}
}

// NewWidgetRepository returns the SQL widget repository behind the Redis
// cache. Without Redis the cache is a no-op.
func NewWidgetRepository(data *Data, logger log.Logger) domain.WidgetRepository {
	return NewCachedWidgetRepository(newWidgetRepo(data, logger), NewRedisWidgetCache(data, logger))
}

func (r *CachedWidgetRepository) Create(ctx context.Context, w *domain.Widget) error {
	if err := r.repo.Create(ctx, w); err != nil {
		return err
	}
	_ = r.cache.Set(ctx, w)
	return nil
}

func (r *CachedWidgetRepository) UpdateConfig(ctx context.Context, id string, config json.RawMessage) error {
	if err := r.repo.UpdateConfig(ctx, id, config); err != nil {
		return err
	}
	r.refresh(ctx, id)
	return nil
}

func (r *CachedWidgetRepository) FindByID(ctx context.Context, id string) (*domain.Widget, error) {
	if cached, err := r.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	// The read is shared, so one caller going away must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.reads.Do(id, func() (any, error) {
		w, err := r.repo.FindByID(shared, id)
		if err != nil || w == nil {
			return w, err
		}
		_ = r.cache.Set(shared, w)
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	w, _ := v.(*domain.Widget)
	if w == nil {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// FindByOwner is not cached; it is only used by authenticated operator calls.
func (r *CachedWidgetRepository) FindByOwner(ctx context.Context, universityID string) (*domain.Widget, error) {
	return r.repo.FindByOwner(ctx, universityID)
}

func (r *CachedWidgetRepository) MarkVerified(ctx context.Context, id, domainName string, at time.Time) error {
	if err := r.repo.MarkVerified(ctx, id, domainName, at); err != nil {
		return err
	}
	r.refresh(ctx, id)
	return nil
}

// refresh caches the committed row of id, dropping the entry when the row
// cannot be read back.
func (r *CachedWidgetRepository) refresh(ctx context.Context, id string) {
	w, err := r.repo.FindByID(ctx, id)
	if err != nil || w == nil {
		_ = r.cache.Invalidate(ctx, id)
		return
	}
	_ = r.cache.Set(ctx, w)
}
