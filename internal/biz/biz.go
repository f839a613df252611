package biz

import (
	"context"

	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/domain/event"
	"ambassador-tracker/internal/infra/eventbus"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewWidgetUsecase,
	NewClickUsecase,
	NewIntegrationUsecase,
	NewInvitationUsecase,
	NewEnrichmentHandler,
	NewInvitationEventHandler,
	NewEventHandlers,
	wire.Bind(new(EventPublisher), new(*eventbus.EventBus)),
)

// EventPublisher publishes domain events without waiting for subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// LocationResolver resolves a client address. It never fails.
type LocationResolver interface {
	Resolve(ctx context.Context, address string) domain.Location
}

// NewEventHandlers lists the handlers the event router runs.
func NewEventHandlers(enrichment *EnrichmentHandler, invitations *InvitationEventHandler) []eventbus.EventHandler {
	return []eventbus.EventHandler{enrichment, invitations}
}

// RegisterEventHandlers registers all event handlers with the router.
func RegisterEventHandlers(router *eventbus.Router, handlers []eventbus.EventHandler) {
	for _, h := range handlers {
		router.AddHandler(h)
	}
}
