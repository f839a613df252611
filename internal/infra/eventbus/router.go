package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	routerCloseTimeout = 10 * time.Second
	// HandlerTimeout bounds a single handler invocation.
	HandlerTimeout = 30 * time.Second
)

// EventHandler reacts to one kind of event.
type EventHandler interface {
	HandlerName() string
	// EventName selects the topic the handler subscribes to.
	EventName() string
	Handle(ctx context.Context, env *Envelope) error
}

// Router runs every registered handler on its own subscription.
type Router struct {
	router *message.Router
	bus    *EventBus
	logger watermill.LoggerAdapter
}

// NewRouter creates a router reading from bus.
func NewRouter(bus *EventBus, logger watermill.LoggerAdapter) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, logger)
	if err != nil {
		return nil, err
	}
	return &Router{router: router, bus: bus, logger: logger}, nil
}

// AddHandler subscribes h to the topic of its event. Handlers must be added
// before Run.
func (r *Router) AddHandler(h EventHandler) {
	r.router.AddNoPublisherHandler(
		h.HandlerName(),
		Topic(h.EventName()),
		r.bus.Subscriber(),
		r.wrap(h),
	)
}

// wrap adapts h to watermill. Every message is acked whatever the outcome:
// gochannel redelivers nacked messages immediately and without limit, and
// all handlers here are best effort.
func (r *Router) wrap(h EventHandler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		fields := watermill.LogFields{"handler": h.HandlerName(), "message_uuid": msg.UUID}
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("event handler panicked", fmt.Errorf("%v", p), fields)
			}
		}()

		env, err := Decode(msg)
		if err != nil {
			r.logger.Error("dropping undecodable event", err, fields)
			return nil
		}

		ctx, cancel := context.WithTimeout(msg.Context(), HandlerTimeout)
		defer cancel()
		if err := h.Handle(ctx, env); err != nil {
			fields["event_name"] = env.EventName
			r.logger.Error("event handler failed", err, fields)
		}
		return nil
	}
}

// Run blocks until ctx is done or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the handlers, waiting up to the close timeout for in-flight ones.
func (r *Router) Close() error {
	return r.router.Close()
}
