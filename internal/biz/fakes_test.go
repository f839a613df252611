package biz

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/domain/event"
	"ambassador-tracker/internal/mail"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus"
)

var errBoom = errors.New("boom")

// noopUnitOfWork runs fn without a transaction.
type noopUnitOfWork struct{}

func (noopUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type fakeWidgetRepo struct {
	mu      sync.Mutex
	widgets map[string]*domain.Widget
}

func newFakeWidgetRepo() *fakeWidgetRepo {
	return &fakeWidgetRepo{widgets: make(map[string]*domain.Widget)}
}

func (r *fakeWidgetRepo) Create(_ context.Context, w *domain.Widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.widgets[w.ID] = &cp
	return nil
}

func (r *fakeWidgetRepo) UpdateConfig(_ context.Context, id string, config json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[id]
	if !ok {
		return domain.ErrWidgetNotFound
	}
	w.Config = config
	return nil
}

func (r *fakeWidgetRepo) FindByID(_ context.Context, id string) (*domain.Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWidgetRepo) FindByOwner(_ context.Context, universityID string) (*domain.Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.widgets {
		if w.OwnedBy(universityID) {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWidgetRepo) MarkVerified(_ context.Context, id, domainName string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[id]
	if !ok {
		return domain.ErrWidgetNotFound
	}
	w.Verified = true
	w.LastVerifiedAt = &at
	w.LastVerifiedDomain = domainName
	return nil
}

type fakeClickRepo struct {
	mu        sync.Mutex
	clicks    map[string]*domain.ClickEvent
	createErr error
}

func newFakeClickRepo() *fakeClickRepo {
	return &fakeClickRepo{clicks: make(map[string]*domain.ClickEvent)}
}

func (r *fakeClickRepo) Create(_ context.Context, c *domain.ClickEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.clicks[c.ID] = &cp
	return nil
}

func (r *fakeClickRepo) FindByID(_ context.Context, id string) (*domain.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clicks[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClickRepo) SetCountryIfNull(_ context.Context, id, country string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clicks[id]
	if !ok || c.Country != nil {
		return false, nil
	}
	c.Country = &country
	return true, nil
}

func (r *fakeClickRepo) SaveAnswers(_ context.Context, a domain.ClickAnswers) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clicks[a.ClickID]
	if !ok {
		return false, nil
	}
	if c.Question1Answer == nil {
		c.Question1Answer = a.Question1Answer
	}
	if c.Question2Answer == nil {
		c.Question2Answer = a.Question2Answer
	}
	if a.AmbassadorID != nil {
		c.AmbassadorID = a.AmbassadorID
	}
	if a.AmbassadorName != nil {
		c.AmbassadorName = a.AmbassadorName
	}
	return true, nil
}

func (r *fakeClickRepo) ListByWidget(_ context.Context, widgetID string) ([]*domain.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ClickEvent
	for _, c := range r.clicks {
		if c.WidgetID == widgetID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClickedAt.After(out[j].ClickedAt) })
	return out, nil
}

func (r *fakeClickRepo) CountByWidget(ctx context.Context, widgetID string) (int64, error) {
	clicks, _ := r.ListByWidget(ctx, widgetID)
	return int64(len(clicks)), nil
}

func (r *fakeClickRepo) CountByCountry(ctx context.Context, widgetID string) ([]domain.CountryCount, error) {
	clicks, _ := r.ListByWidget(ctx, widgetID)
	tally := make(map[string]int64)
	for _, c := range clicks {
		tally[c.CountryLabel()]++
	}
	out := make([]domain.CountryCount, 0, len(tally))
	for country, n := range tally {
		out = append(out, domain.CountryCount{Country: country, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

func (r *fakeClickRepo) country(id string) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clicks[id]; ok {
		return c.Country
	}
	return nil
}

// fakeInvitationRepo keeps invitations in insertion order.
type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations []*domain.Invitation
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations = append(r.invitations, inv)
	return nil
}

func (r *fakeInvitationRepo) Update(_ context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.invitations {
		if existing.ID() == inv.ID() {
			r.invitations[i] = inv
			return nil
		}
	}
	return domain.ErrInvitationNotFound
}

func (r *fakeInvitationRepo) FindLatestByEmail(_ context.Context, email string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Invitation
	for _, inv := range r.invitations {
		if inv.AmbassadorEmail() != email {
			continue
		}
		if latest == nil || !inv.InvitedAt().Before(latest.InvitedAt()) {
			latest = inv
		}
	}
	return latest, nil
}

func (r *fakeInvitationRepo) FindActive(_ context.Context, universityID, email string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.invitations) - 1; i >= 0; i-- {
		inv := r.invitations[i]
		if inv.UniversityID() == universityID && inv.AmbassadorEmail() == email && inv.IsActive() {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepo) byUniversity(universityID string) []*domain.Invitation {
	var out []*domain.Invitation
	for i := len(r.invitations) - 1; i >= 0; i-- {
		if r.invitations[i].UniversityID() == universityID {
			out = append(out, r.invitations[i])
		}
	}
	return out
}

func (r *fakeInvitationRepo) ListByUniversity(_ context.Context, universityID string, offset, limit int) ([]*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byUniversity(universityID)
	if offset >= len(all) {
		return []*domain.Invitation{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeInvitationRepo) ListByUniversityAndStatus(_ context.Context, universityID string, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Invitation{}
	for _, inv := range r.byUniversity(universityID) {
		if inv.Status() == status {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) CountByStatus(_ context.Context, universityID string) (domain.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := domain.NewStatusCounts()
	for _, inv := range r.byUniversity(universityID) {
		counts[inv.Status()]++
	}
	return counts, nil
}

func (r *fakeInvitationRepo) CountByEmailAndStatus(_ context.Context, email string, status domain.InvitationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invitations {
		if inv.AmbassadorEmail() == email && inv.Status() == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeInvitationRepo) TransitionByEmail(_ context.Context, email string, from, to domain.InvitationStatus, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i, inv := range r.invitations {
		if inv.AmbassadorEmail() != email || inv.Status() != from {
			continue
		}
		at := at.UTC()
		r.invitations[i] = domain.ReconstructInvitation(
			inv.ID(), inv.UniversityID(), inv.UniversityName(), inv.AmbassadorName(), inv.AmbassadorEmail(),
			to, inv.InvitedAt(), &at,
		)
		n++
	}
	return n, nil
}

func (r *fakeInvitationRepo) statuses(email string) []domain.InvitationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.InvitationStatus
	for _, inv := range r.invitations {
		if inv.AmbassadorEmail() == email {
			out = append(out, inv.Status())
		}
	}
	return out
}

// fakeLoadHistory is an unbounded newest-first history.
type fakeLoadHistory struct {
	mu    sync.Mutex
	loads map[string][]domain.IntegrationLoad
	err   error
}

func newFakeLoadHistory() *fakeLoadHistory {
	return &fakeLoadHistory{loads: make(map[string][]domain.IntegrationLoad)}
}

func (h *fakeLoadHistory) Append(_ context.Context, widgetID string, load domain.IntegrationLoad) error {
	if h.err != nil {
		return h.err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads[widgetID] = append([]domain.IntegrationLoad{load}, h.loads[widgetID]...)
	return nil
}

func (h *fakeLoadHistory) Recent(_ context.Context, widgetID string) ([]domain.IntegrationLoad, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.IntegrationLoad(nil), h.loads[widgetID]...), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) published() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Invitation
	fail map[string]bool
}

func (m *fakeMailer) SendInvitation(_ context.Context, inv mail.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[inv.To] {
		return errBoom
	}
	m.sent = append(m.sent, inv)
	return nil
}

type stubResolver struct {
	loc   domain.Location
	delay time.Duration
}

func (r stubResolver) Resolve(ctx context.Context, _ string) domain.Location {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return domain.UnknownLocation()
		}
	}
	return r.loc
}

func newTestWidgetUsecase(repo domain.WidgetRepository) *WidgetUsecase {
	return NewWidgetUsecase(repo, &conf.Tracking{PublicBaseUrl: "https://api.example.com/"}, log.DefaultLogger)
}

func seedWidget(repo *fakeWidgetRepo, id, owner string, verified bool) {
	w := &domain.Widget{ID: id, Config: json.RawMessage(`{}`), Verified: verified, CreatedAt: time.Now()}
	if owner != "" {
		w.UniversityID = &owner
	}
	_ = repo.Create(context.Background(), w)
}
