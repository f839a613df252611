package data

import (
	"context"
	"math"
	"time"

	"ambassador-tracker/internal/domain"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.InvitationRepository = (*invitationRepo)(nil)

var invitationColumns = []string{
	"id", "university_id", "university_name", "ambassador_name",
	"ambassador_email", "status", "invited_at", "responded_at",
}

type invitationRepo struct {
	data *Data
	log  *log.Helper
}

// NewInvitationRepo creates a new invitation repository.
func NewInvitationRepo(data *Data, logger log.Logger) domain.InvitationRepository {
	return &invitationRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *invitationRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.data.sqlDialect())
}

func (r *invitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	query, args := r.builder().
		Insert(invitationsTable).
		Columns(invitationColumns...).
		Values(
			inv.ID(), inv.UniversityID(), inv.UniversityName(), inv.AmbassadorName(),
			inv.AmbassadorEmail(), string(inv.Status()), inv.InvitedAt().UTC(), inv.RespondedAt(),
		).
		Query()
	return r.data.conn(ctx).Exec(ctx, query, args, nil)
}

func (r *invitationRepo) Update(ctx context.Context, inv *domain.Invitation) error {
	upd := r.builder().
		Update(invitationsTable).
		Set("ambassador_name", inv.AmbassadorName()).
		Set("status", string(inv.Status())).
		Set("invited_at", inv.InvitedAt().UTC())
	if at := inv.RespondedAt(); at != nil {
		upd.Set("responded_at", at.UTC())
	} else {
		upd.SetNull("responded_at")
	}

	query, args := upd.Where(entsql.EQ("id", inv.ID())).Query()
	var res entsql.Result
	if err := r.data.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

// FindLatestByEmail returns the most recently sent invitation for email.
func (r *invitationRepo) FindLatestByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	return r.first(ctx, r.selectInvitations().
		Where(entsql.EQ("ambassador_email", email)))
}

// FindActive returns the newest invitation of a university for email that
// still awaits a signup.
func (r *invitationRepo) FindActive(ctx context.Context, universityID, email string) (*domain.Invitation, error) {
	return r.first(ctx, r.selectInvitations().
		Where(entsql.And(
			entsql.EQ("university_id", universityID),
			entsql.EQ("ambassador_email", email),
			entsql.In("status", string(domain.StatusInvited), string(domain.StatusAccepted)),
		)))
}

func (r *invitationRepo) ListByUniversity(ctx context.Context, universityID string, offset, limit int) ([]*domain.Invitation, error) {
	sel := r.selectInvitations().Where(entsql.EQ("university_id", universityID))
	switch {
	case limit > 0:
		sel.Limit(limit)
	case offset > 0:
		// SQLite rejects OFFSET without LIMIT.
		sel.Limit(math.MaxInt32)
	}
	if offset > 0 {
		sel.Offset(offset)
	}
	query, args := sel.Query()
	return r.query(ctx, query, args)
}

func (r *invitationRepo) ListByUniversityAndStatus(ctx context.Context, universityID string, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	query, args := r.selectInvitations().
		Where(entsql.And(
			entsql.EQ("university_id", universityID),
			entsql.EQ("status", string(status)),
		)).
		Query()
	return r.query(ctx, query, args)
}

// CountByStatus returns the per-status tally of a university, zero-filled.
func (r *invitationRepo) CountByStatus(ctx context.Context, universityID string) (domain.StatusCounts, error) {
	query, args := r.builder().
		Select("status", entsql.Count("*")).
		From(entsql.Table(invitationsTable)).
		Where(entsql.EQ("university_id", universityID)).
		GroupBy("status").
		Query()

	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := domain.NewStatusCounts()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.InvitationStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *invitationRepo) CountByEmailAndStatus(ctx context.Context, email string, status domain.InvitationStatus) (int64, error) {
	query, args := r.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(invitationsTable)).
		Where(entsql.And(
			entsql.EQ("ambassador_email", email),
			entsql.EQ("status", string(status)),
		)).
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

// TransitionByEmail bulk-moves invitations for email across universities.
func (r *invitationRepo) TransitionByEmail(ctx context.Context, email string, from, to domain.InvitationStatus, at time.Time) (int64, error) {
	query, args := r.builder().
		Update(invitationsTable).
		Set("status", string(to)).
		Set("responded_at", at.UTC()).
		Where(entsql.And(
			entsql.EQ("ambassador_email", email),
			entsql.EQ("status", string(from)),
		)).
		Query()

	var res entsql.Result
	if err := r.data.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationRepo) selectInvitations() *entsql.Selector {
	return r.builder().
		Select(invitationColumns...).
		From(entsql.Table(invitationsTable)).
		OrderBy(entsql.Desc("invited_at"), entsql.Desc("id"))
}

func (r *invitationRepo) first(ctx context.Context, sel *entsql.Selector) (*domain.Invitation, error) {
	query, args := sel.Limit(1).Query()
	invs, err := r.query(ctx, query, args)
	if err != nil || len(invs) == 0 {
		return nil, err
	}
	return invs[0], nil
}

func (r *invitationRepo) query(ctx context.Context, query string, args []any) ([]*domain.Invitation, error) {
	var rows entsql.Rows
	if err := r.data.conn(ctx).Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Invitation
	for rows.Next() {
		var (
			id, universityID, universityName, name, email, status string
			invitedAt                                             time.Time
			respondedAt                                           entsql.NullTime
		)
		if err := rows.Scan(&id, &universityID, &universityName, &name, &email, &status, &invitedAt, &respondedAt); err != nil {
			return nil, err
		}
		result = append(result, domain.ReconstructInvitation(
			id, universityID, universityName, name, email,
			domain.InvitationStatus(status), invitedAt.UTC(), nullTime(respondedAt),
		))
	}
	return result, rows.Err()
}
