package biz

import (
	"context"
	"strings"
	"time"

	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/domain/event"
	"ambassador-tracker/internal/mail"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	sourceResponse = "response"
	sourceSignup   = "signup"
)

// InviteInput describes one invitation sent by a university.
type InviteInput struct {
	UniversityID    string
	UniversityName  string
	UniversityEmail string
	AmbassadorName  string
	AmbassadorEmail string
}

// Recipient is one addressee of a bulk invitation.
type Recipient struct {
	Name  string
	Email string
}

// InviteResult reports the outcome for one recipient. The invitation row is
// kept even when the email could not be delivered.
type InviteResult struct {
	Email      string
	Invitation *domain.Invitation
	Delivered  bool
	Error      string
}

// BulkInviteResult aggregates per-recipient outcomes.
type BulkInviteResult struct {
	Results     []InviteResult
	TotalSent   int
	TotalFailed int
}

// InvitationPage is one page of a university's invitations.
type InvitationPage struct {
	Invitations  []*domain.Invitation
	TotalCount   int64
	StatusCounts domain.StatusCounts
	Page         int
	PageSize     int
}

// InvitationCheck is the public view of an email's invitation state.
type InvitationCheck struct {
	WasInvited     bool
	Status         domain.InvitationStatus
	UniversityName string
}

// SignupOutcome describes the transition applied on ambassador signup.
type SignupOutcome struct {
	From  domain.InvitationStatus
	To    domain.InvitationStatus
	Count int64
}

// InvitationUsecase runs the invitation lifecycle.
type InvitationUsecase struct {
	repo      domain.InvitationRepository
	uow       domain.UnitOfWork
	widgets   *WidgetUsecase
	mailer    mail.Mailer
	links     *mail.LinkBuilder
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *log.Helper
}

func NewInvitationUsecase(
	repo domain.InvitationRepository,
	uow domain.UnitOfWork,
	widgets *WidgetUsecase,
	mailer mail.Mailer,
	links *mail.LinkBuilder,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger log.Logger,
) *InvitationUsecase {
	return &InvitationUsecase{
		repo:      repo,
		uow:       uow,
		widgets:   widgets,
		mailer:    mailer,
		links:     links,
		publisher: publisher,
		metrics:   m,
		log:       log.NewHelper(log.With(logger, "module", "biz/invitation")),
	}
}

// Invite records an INVITED invitation and emails the ambassador. An active
// invitation of the same university for the same email is reused.
func (uc *InvitationUsecase) Invite(ctx context.Context, in InviteInput) (*InviteResult, error) {
	inv, err := uc.upsert(ctx, in)
	if err != nil {
		return nil, err
	}

	res := &InviteResult{Email: inv.AmbassadorEmail(), Invitation: inv}
	err = uc.mailer.SendInvitation(ctx, uc.links.Build(mail.Invitation{
		To:             inv.AmbassadorEmail(),
		AmbassadorName: inv.AmbassadorName(),
		UniversityName: inv.UniversityName(),
		ReplyTo:        strings.TrimSpace(in.UniversityEmail),
	}))
	if err != nil {
		uc.log.WithContext(ctx).Errorf("failed to send invitation to %s: %v", inv.AmbassadorEmail(), err)
		uc.metrics.InvitationsSent.WithLabelValues("false").Inc()
		res.Error = err.Error()
		return res, nil
	}

	uc.metrics.InvitationsSent.WithLabelValues("true").Inc()
	res.Delivered = true
	return res, nil
}

func (uc *InvitationUsecase) upsert(ctx context.Context, in InviteInput) (*domain.Invitation, error) {
	email, err := domain.NormalizeEmail(in.AmbassadorEmail)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindActive(ctx, in.UniversityID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Reinvite(in.AmbassadorName, time.Now())
		if err := uc.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	inv, err := domain.NewInvitation(
		uuid.Must(uuid.NewV7()).String(),
		in.UniversityID,
		in.UniversityName,
		in.AmbassadorName,
		email,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// BulkInvite invites every recipient. Failures are reported per recipient.
func (uc *InvitationUsecase) BulkInvite(ctx context.Context, sender InviteInput, recipients []Recipient) *BulkInviteResult {
	out := &BulkInviteResult{Results: make([]InviteResult, 0, len(recipients))}
	for _, r := range recipients {
		in := sender
		in.AmbassadorName = r.Name
		in.AmbassadorEmail = r.Email

		res, err := uc.Invite(ctx, in)
		if err != nil {
			res = &InviteResult{Email: r.Email, Error: err.Error()}
		}
		if res.Delivered {
			out.TotalSent++
		} else {
			out.TotalFailed++
		}
		out.Results = append(out.Results, *res)
	}
	return out
}

// SetStatus applies an explicit accept or decline to the most recent
// invitation of email. Earlier decisions may be overwritten.
func (uc *InvitationUsecase) SetStatus(ctx context.Context, email string, status domain.InvitationStatus) (*domain.Invitation, error) {
	if !status.IsExplicitResponse() {
		return nil, domain.ErrInvalidStatus
	}
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	inv, err := uc.repo.FindLatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}

	from := inv.Status()
	if err := inv.Respond(status, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.NewInvitationStatusChanged(email, string(from), string(status), 1, sourceResponse))
	return inv, nil
}

// HandleAmbassadorSignup advances the invitations of a newly registered
// ambassador: ACCEPTED ones become JOINED, otherwise INVITED ones become
// ACCEPTED. Failures are logged and nil is returned.
func (uc *InvitationUsecase) HandleAmbassadorSignup(ctx context.Context, rawEmail string) *SignupOutcome {
	email, err := domain.NormalizeEmail(rawEmail)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("ignoring signup with invalid email %q", rawEmail)
		return nil
	}

	var out SignupOutcome
	err = uc.uow.Do(ctx, func(ctx context.Context) error {
		accepted, err := uc.repo.CountByEmailAndStatus(ctx, email, domain.StatusAccepted)
		if err != nil {
			return err
		}
		out.From, out.To = domain.SignupTransition(accepted > 0)
		out.Count, err = uc.repo.TransitionByEmail(ctx, email, out.From, out.To, time.Now())
		return err
	})
	if err != nil {
		uc.log.WithContext(ctx).Errorf("failed to update invitations on signup of %s: %v", email, err)
		return nil
	}

	if out.Count > 0 {
		uc.log.WithContext(ctx).Infof("signup of %s moved %d invitation(s) %s -> %s", email, out.Count, out.From, out.To)
		uc.publish(ctx, event.NewInvitationStatusChanged(email, string(out.From), string(out.To), out.Count, sourceSignup))
	}
	return &out
}

// List pages through a university's invitations. Status counts cover all of them.
func (uc *InvitationUsecase) List(ctx context.Context, universityID string, page, pageSize int) (*InvitationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	invitations, err := uc.repo.ListByUniversity(ctx, universityID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	counts, err := uc.repo.CountByStatus(ctx, universityID)
	if err != nil {
		return nil, err
	}

	return &InvitationPage{
		Invitations:  invitations,
		TotalCount:   counts.Total(),
		StatusCounts: counts,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// CheckStatus reports the latest invitation of email, if any. An address
// that cannot be parsed was never invited.
func (uc *InvitationUsecase) CheckStatus(ctx context.Context, email string) (*InvitationCheck, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return &InvitationCheck{}, nil
	}
	inv, err := uc.repo.FindLatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &InvitationCheck{}, nil
	}
	return &InvitationCheck{
		WasInvited:     true,
		Status:         inv.Status(),
		UniversityName: inv.UniversityName(),
	}, nil
}

// JoinedAmbassadors lists the JOINED invitations of the widget's owner.
// Anonymous widgets have none.
func (uc *InvitationUsecase) JoinedAmbassadors(ctx context.Context, widgetID string) ([]*domain.Invitation, error) {
	w, err := uc.widgets.Get(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	if w.UniversityID == nil {
		return []*domain.Invitation{}, nil
	}
	return uc.repo.ListByUniversityAndStatus(ctx, *w.UniversityID, domain.StatusJoined)
}

func (uc *InvitationUsecase) publish(ctx context.Context, e event.Event) {
	if err := uc.publisher.Publish(ctx, e); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to publish %s: %v", e.EventName(), err)
	}
}
