package data

import (
	"context"
	"time"

	"ambassador-tracker/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.ClickRepository = (*clickRepo)(nil)

var clickColumns = []string{
	"id", "widget_id", "domain", "client_address", "country",
	"ambassador_id", "ambassador_name", "question1_answer", "question2_answer",
	"clicked_at", "created_at",
}

// clickRepo implements domain.ClickRepository.
type clickRepo struct {
	data *Data
	log  *log.Helper
}

// NewClickRepo creates a new click repository.
func NewClickRepo(data *Data, logger log.Logger) domain.ClickRepository {
	return &clickRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *clickRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.data.sqlDialect())
}

// Create inserts a click event.
func (r *clickRepo) Create(ctx context.Context, c *domain.ClickEvent) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query, args := r.builder().
		Insert(clickEventsTable).
		Columns(clickColumns...).
		Values(
			c.ID, c.WidgetID, c.Domain, c.ClientAddress, c.Country,
			c.AmbassadorID, c.AmbassadorName, c.Question1Answer, c.Question2Answer,
			c.ClickedAt.UTC(), c.CreatedAt.UTC(),
		).
		Query()
	return r.data.conn(ctx).Exec(ctx, query, args, nil)
}

// FindByID retrieves a click by id.
func (r *clickRepo) FindByID(ctx context.Context, id string) (*domain.ClickEvent, error) {
	query, args := r.builder().
		Select(clickColumns...).
		From(entsql.Table(clickEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	clicks, err := r.query(ctx, query, args)
	if err != nil || len(clicks) == 0 {
		return nil, err
	}
	return clicks[0], nil
}

// SetCountryIfNull fills the country once. A second enrichment of the same
// click is a no-op.
func (r *clickRepo) SetCountryIfNull(ctx context.Context, id, country string) (bool, error) {
	query, args := r.builder().
		Update(clickEventsTable).
		Set("country", country).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("country"))).
		Query()
	return r.execAffected(ctx, query, args)
}

// SaveAnswers merges follow-up answers into a click.
func (r *clickRepo) SaveAnswers(ctx context.Context, a domain.ClickAnswers) (bool, error) {
	upd := r.builder().Update(clickEventsTable)
	if a.Question1Answer != nil {
		upd.Set("question1_answer", coalesce("question1_answer", *a.Question1Answer))
	}
	if a.Question2Answer != nil {
		upd.Set("question2_answer", coalesce("question2_answer", *a.Question2Answer))
	}
	if a.AmbassadorID != nil {
		upd.Set("ambassador_id", *a.AmbassadorID)
	}
	if a.AmbassadorName != nil {
		upd.Set("ambassador_name", *a.AmbassadorName)
	}
	if upd.Empty() {
		c, err := r.FindByID(ctx, a.ClickID)
		return c != nil, err
	}

	query, args := upd.Where(entsql.EQ("id", a.ClickID)).Query()
	return r.execAffected(ctx, query, args)
}

// ListByWidget returns all clicks of a widget, newest first.
func (r *clickRepo) ListByWidget(ctx context.Context, widgetID string) ([]*domain.ClickEvent, error) {
	query, args := r.builder().
		Select(clickColumns...).
		From(entsql.Table(clickEventsTable)).
		Where(entsql.EQ("widget_id", widgetID)).
		OrderBy(entsql.Desc("clicked_at"), entsql.Desc("created_at")).
		Query()
	return r.query(ctx, query, args)
}

// CountByWidget counts the clicks of a widget.
func (r *clickRepo) CountByWidget(ctx context.Context, widgetID string) (int64, error) {
	query, args := r.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(clickEventsTable)).
		Where(entsql.EQ("widget_id", widgetID)).
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// CountByCountry groups clicks by country, most frequent first.
func (r *clickRepo) CountByCountry(ctx context.Context, widgetID string) ([]domain.CountryCount, error) {
	countryExpr := "COALESCE(country, '" + domain.UnknownCountry + "')"
	query, args := r.builder().
		Select(countryExpr, entsql.Count("*")).
		From(entsql.Table(clickEventsTable)).
		Where(entsql.EQ("widget_id", widgetID)).
		GroupBy(countryExpr).
		OrderBy(entsql.Desc(entsql.Count("*")), countryExpr).
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CountryCount
	for rows.Next() {
		var cc domain.CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count); err != nil {
			return nil, err
		}
		result = append(result, cc)
	}
	return result, rows.Err()
}

func (r *clickRepo) query(ctx context.Context, query string, args []any) ([]*domain.ClickEvent, error) {
	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ClickEvent
	for rows.Next() {
		var (
			c                                   domain.ClickEvent
			country, ambID, ambName, ans1, ans2 entsql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.WidgetID, &c.Domain, &c.ClientAddress, &country,
			&ambID, &ambName, &ans1, &ans2,
			&c.ClickedAt, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.Country = nullString(country)
		c.AmbassadorID = nullString(ambID)
		c.AmbassadorName = nullString(ambName)
		c.Question1Answer = nullString(ans1)
		c.Question2Answer = nullString(ans2)
		c.ClickedAt = c.ClickedAt.UTC()
		c.CreatedAt = c.CreatedAt.UTC()
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (r *clickRepo) execAffected(ctx context.Context, query string, args []any) (bool, error) {
	var res entsql.Result
	if err := r.data.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// coalesce keeps an existing non-null column value and otherwise sets v.
func coalesce(column string, v any) entsql.Querier {
	return entsql.ExprFunc(func(b *entsql.Builder) {
		b.WriteString("COALESCE")
		b.Wrap(func(b *entsql.Builder) {
			b.Ident(column).Comma().Arg(v)
		})
	})
}

func nullString(ns entsql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt entsql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
