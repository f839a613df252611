package data

import (
	"context"
	"encoding/json"
	"time"

	"ambassador-tracker/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.WidgetRepository = (*widgetRepo)(nil)

var widgetColumns = []string{
	"id", "university_id", "config", "is_verified",
	"last_verified_at", "last_verified_domain", "created_at", "updated_at",
}

// widgetRepo implements domain.WidgetRepository against the database.
// Use NewCachedWidgetRepository to get the cached variant.
type widgetRepo struct {
	data *Data
	log  *log.Helper
}

func newWidgetRepo(data *Data, logger log.Logger) *widgetRepo {
	return &widgetRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *widgetRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.data.sqlDialect())
}

func (r *widgetRepo) Create(ctx context.Context, w *domain.Widget) error {
	cfg, err := domain.NormalizeConfig(w.Config)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	w.Config = cfg

	var domainName *string
	if w.LastVerifiedDomain != "" {
		domainName = &w.LastVerifiedDomain
	}

	query, args := r.builder().
		Insert(widgetsTable).
		Columns(widgetColumns...).
		Values(
			w.ID, w.UniversityID, string(cfg), w.Verified,
			w.LastVerifiedAt, domainName, w.CreatedAt, w.UpdatedAt,
		).
		Query()
	return r.data.conn(ctx).Exec(ctx, query, args, nil)
}

func (r *widgetRepo) UpdateConfig(ctx context.Context, id string, config json.RawMessage) error {
	cfg, err := domain.NormalizeConfig(config)
	if err != nil {
		return err
	}
	query, args := r.builder().
		Update(widgetsTable).
		Set("config", string(cfg)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, query, args)
}

func (r *widgetRepo) FindByID(ctx context.Context, id string) (*domain.Widget, error) {
	return r.first(ctx, r.selectWidgets().Where(entsql.EQ("id", id)))
}

func (r *widgetRepo) FindByOwner(ctx context.Context, universityID string) (*domain.Widget, error) {
	return r.first(ctx, r.selectWidgets().
		Where(entsql.EQ("university_id", universityID)).
		OrderBy(entsql.Desc("created_at")))
}

// MarkVerified flips the verified flag and records where the widget was seen.
func (r *widgetRepo) MarkVerified(ctx context.Context, id, domainName string, at time.Time) error {
	query, args := r.builder().
		Update(widgetsTable).
		Set("is_verified", true).
		Set("last_verified_at", at.UTC()).
		Set("last_verified_domain", domainName).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, query, args)
}

func (r *widgetRepo) selectWidgets() *entsql.Selector {
	return r.builder().
		Select(widgetColumns...).
		From(entsql.Table(widgetsTable))
}

func (r *widgetRepo) first(ctx context.Context, sel *entsql.Selector) (*domain.Widget, error) {
	query, args := sel.Limit(1).Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		w              domain.Widget
		owner, lastDom entsql.NullString
		lastAt         entsql.NullTime
		cfg            []byte
	)
	if err := rows.Scan(&w.ID, &owner, &cfg, &w.Verified, &lastAt, &lastDom, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.UniversityID = nullString(owner)
	w.Config = json.RawMessage(cfg)
	w.LastVerifiedAt = nullTime(lastAt)
	w.LastVerifiedDomain = lastDom.String
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, rows.Err()
}

func (r *widgetRepo) execOne(ctx context.Context, query string, args []any) error {
	var res entsql.Result
	if err := r.data.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWidgetNotFound
	}
	return nil
}
