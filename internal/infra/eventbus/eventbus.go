// Package eventbus carries domain events from the request path to
// background handlers over an in-process watermill pub/sub.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"ambassador-tracker/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	topicPrefix = "tracking."

	// subscriberBuffer bounds how many events may wait for a slow handler
	// before delivery to that handler starts blocking its own goroutine.
	subscriberBuffer = 256

	metaEventName = "event_name"
	metaSubject   = "subject"
)

// Topic returns the topic events named name are published on.
func Topic(name string) string {
	return topicPrefix + name
}

// EventBus publishes domain events without waiting for any subscriber.
// Events published while nobody subscribes to their topic are dropped.
type EventBus struct {
	pubsub *gochannel.GoChannel
}

// NewEventBus creates a new event bus using Go channels.
func NewEventBus(logger watermill.LoggerAdapter) *EventBus {
	return &EventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            subscriberBuffer,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
	}
}

// Subscriber exposes the subscribing side for the router.
func (b *EventBus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Publish encodes e and hands it to the subscribers of its topic. The
// request context is not attached: handlers outlive the request.
func (b *EventBus) Publish(_ context.Context, e event.Event) error {
	msg, err := Encode(e)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(Topic(e.EventName()), msg)
}

// Close stops delivery to all subscribers.
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// Envelope is the wire form of an event. Payload holds the event itself.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps e in an envelope message keyed by the event id.
func Encode(e event.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(Envelope{
		EventID:    e.EventID(),
		EventName:  e.EventName(),
		Subject:    e.Subject(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(e.EventID(), body)
	msg.Metadata.Set(metaEventName, e.EventName())
	msg.Metadata.Set(metaSubject, e.Subject())
	return msg, nil
}

// Decode reads the envelope of msg.
func Decode(msg *message.Message) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
