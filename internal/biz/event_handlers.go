package biz

import (
	"context"
	"encoding/json"

	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/domain/event"
	"ambassador-tracker/internal/infra/eventbus"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface checks
var (
	_ eventbus.EventHandler = (*EnrichmentHandler)(nil)
	_ eventbus.EventHandler = (*InvitationEventHandler)(nil)
)

// EnrichmentHandler fills in the country of a recorded click. It makes a
// single attempt; failures are logged and dropped.
type EnrichmentHandler struct {
	clicks   domain.ClickRepository
	resolver LocationResolver
	metrics  *metrics.Metrics
	log      *log.Helper
}

// NewEnrichmentHandler creates a new click enrichment handler.
func NewEnrichmentHandler(clicks domain.ClickRepository, resolver LocationResolver, m *metrics.Metrics, logger log.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		clicks:   clicks,
		resolver: resolver,
		metrics:  m,
		log:      log.NewHelper(log.With(logger, "module", "biz/enrichment")),
	}
}

func (h *EnrichmentHandler) HandlerName() string {
	return "click_enrichment_handler"
}

func (h *EnrichmentHandler) EventName() string {
	return event.ClickRecordedName
}

// Handle resolves the client address and stores the country if none is set yet.
func (h *EnrichmentHandler) Handle(ctx context.Context, env *eventbus.Envelope) error {
	var evt event.ClickRecorded
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		h.log.Warnf("failed to unmarshal ClickRecorded event: %v", err)
		h.metrics.ClicksEnriched.WithLabelValues("invalid").Inc()
		return nil
	}

	loc := h.resolver.Resolve(ctx, evt.ClientAddress)

	updated, err := h.clicks.SetCountryIfNull(ctx, evt.ClickID, loc.Country)
	if err != nil {
		h.log.Warnf("failed to store country for click %s: %v", evt.ClickID, err)
		h.metrics.ClicksEnriched.WithLabelValues("error").Inc()
		return nil
	}
	if !updated {
		h.metrics.ClicksEnriched.WithLabelValues("skipped").Inc()
		return nil
	}

	h.log.Debugf("click %s located in %s", evt.ClickID, loc)
	h.metrics.ClicksEnriched.WithLabelValues("enriched").Inc()
	return nil
}

// InvitationEventHandler records invitation transitions.
type InvitationEventHandler struct {
	metrics *metrics.Metrics
	log     *log.Helper
}

// NewInvitationEventHandler creates a new invitation event handler.
func NewInvitationEventHandler(m *metrics.Metrics, logger log.Logger) *InvitationEventHandler {
	return &InvitationEventHandler{
		metrics: m,
		log:     log.NewHelper(log.With(logger, "module", "biz/invitation-events")),
	}
}

func (h *InvitationEventHandler) HandlerName() string {
	return "invitation_status_handler"
}

func (h *InvitationEventHandler) EventName() string {
	return event.InvitationStatusChangedName
}

func (h *InvitationEventHandler) Handle(ctx context.Context, env *eventbus.Envelope) error {
	var evt event.InvitationStatusChanged
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		h.log.Warnf("failed to unmarshal InvitationStatusChanged event: %v", err)
		return nil
	}

	h.metrics.InvitationTransitions.WithLabelValues(evt.To, evt.Source).Add(float64(evt.Count))
	h.log.Infof("[Event] %d invitation(s) for %s moved %s -> %s (%s)", evt.Count, evt.Email, evt.From, evt.To, evt.Source)
	return nil
}
