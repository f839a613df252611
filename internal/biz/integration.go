package biz

import (
	"context"
	"strings"
	"time"

	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

const statusRecentLoads = 5

// LoadInput is an iframe-loaded beacon.
type LoadInput struct {
	WidgetID  string
	Domain    string
	Timestamp string
	UserAgent string
}

// VerifyResult reports whether a load was seen on the candidate site.
type VerifyResult struct {
	Verified        bool
	Message         string
	Host            string
	LastLoad        *domain.IntegrationLoad
	ObservedDomains []string
}

// IntegrationStatus summarizes the load beacons of a widget.
type IntegrationStatus struct {
	Verified           bool
	Message            string
	LastVerifiedAt     *time.Time
	LastVerifiedDomain string
	LastLoad           *domain.IntegrationLoad
	TotalLoads         int
	UniqueDomains      int
	RecentLoads        []domain.IntegrationLoad
}

// IntegrationUsecase tracks where widgets are embedded.
type IntegrationUsecase struct {
	widgets *WidgetUsecase
	history domain.LoadHistory
	metrics *metrics.Metrics
	log     *log.Helper
}

func NewIntegrationUsecase(widgets *WidgetUsecase, history domain.LoadHistory, m *metrics.Metrics, logger log.Logger) *IntegrationUsecase {
	return &IntegrationUsecase{
		widgets: widgets,
		history: history,
		metrics: m,
		log:     log.NewHelper(log.With(logger, "module", "biz/integration")),
	}
}

// RecordLoad keeps the beacon in the widget's load history and marks the
// widget verified.
func (uc *IntegrationUsecase) RecordLoad(ctx context.Context, in LoadInput) error {
	widgetID := strings.TrimSpace(in.WidgetID)
	domainName := domain.NormalizeDomain(in.Domain)
	if widgetID == "" || domainName == "" {
		return domain.ErrMissingField
	}
	ts, err := domain.ParseEventTime(in.Timestamp)
	if err != nil {
		return err
	}
	if _, err := uc.widgets.Get(ctx, widgetID); err != nil {
		return err
	}

	load := domain.IntegrationLoad{
		Domain:          domainName,
		Timestamp:       ts,
		ClientSignature: strings.TrimSpace(in.UserAgent),
	}
	if err := uc.history.Append(ctx, widgetID, load); err != nil {
		return err
	}
	if err := uc.widgets.MarkVerified(ctx, widgetID, domainName, time.Now()); err != nil {
		return err
	}

	uc.metrics.IntegrationLoads.Inc()
	uc.log.WithContext(ctx).Infof("widget %s loaded on %s", widgetID, domainName)
	return nil
}

// Verify checks the retained loads against the host of candidateURL.
func (uc *IntegrationUsecase) Verify(ctx context.Context, widgetID, candidateURL string) (*VerifyResult, error) {
	host, err := domain.HostFromURL(candidateURL)
	if err != nil {
		return nil, err
	}
	if _, err := uc.widgets.Get(ctx, widgetID); err != nil {
		return nil, err
	}

	loads, err := uc.history.Recent(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	if match, ok := lo.Find(loads, func(l domain.IntegrationLoad) bool { return l.MatchesHost(host) }); ok {
		return &VerifyResult{
			Verified: true,
			Message:  "Widget is successfully integrated on " + host,
			Host:     host,
			LastLoad: &match,
		}, nil
	}

	observed := distinctDomains(loads)
	msg := "Widget has not been loaded on " + host + " yet"
	if len(observed) > 0 {
		msg += "; it was seen on: " + strings.Join(observed, ", ")
	}
	return &VerifyResult{
		Verified:        false,
		Message:         msg,
		Host:            host,
		ObservedDomains: observed,
	}, nil
}

// Status reports the verification state and recent loads of a widget.
func (uc *IntegrationUsecase) Status(ctx context.Context, widgetID string) (*IntegrationStatus, error) {
	w, err := uc.widgets.Get(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	loads, err := uc.history.Recent(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	st := &IntegrationStatus{
		Verified:           w.Verified,
		LastVerifiedAt:     w.LastVerifiedAt,
		LastVerifiedDomain: w.LastVerifiedDomain,
		TotalLoads:         len(loads),
		UniqueDomains:      len(distinctDomains(loads)),
		RecentLoads:        lo.Slice(loads, 0, statusRecentLoads),
	}
	if len(loads) > 0 {
		st.LastLoad = &loads[0]
	}
	st.Message = "Widget has not been loaded on any website yet"
	if w.Verified {
		st.Message = "Widget is integrated"
	}
	return st, nil
}

func distinctDomains(loads []domain.IntegrationLoad) []string {
	return lo.Uniq(lo.Map(loads, func(l domain.IntegrationLoad, _ int) string { return l.Domain }))
}
