// Package rabbitmq consumes user lifecycle events published by the auth service.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ProviderSet is rabbitmq providers.
var ProviderSet = wire.NewSet(NewConsumer, wire.Bind(new(SignupHandler), new(*biz.InvitationUsecase)))

const (
	// UserRegisteredKey is the routing key of account creation events.
	UserRegisteredKey = "user.registered"

	roleAmbassador = "ambassador"
	handleTimeout  = 10 * time.Second
)

// UserRegistered is the payload of a user.registered event.
type UserRegistered struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SignupHandler reacts to a newly registered ambassador.
type SignupHandler interface {
	HandleAmbassadorSignup(ctx context.Context, email string) *biz.SignupOutcome
}

// Consumer binds a durable queue to the user events exchange and forwards
// ambassador registrations to the invitation ledger.
type Consumer struct {
	url      string
	exchange string
	queue    string
	handler  SignupHandler
	metrics  *metrics.Metrics
	log      *log.Helper

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	done    chan struct{}
}

// NewConsumer creates a consumer. Nothing is dialed until Start.
func NewConsumer(c *conf.Rabbitmq, handler SignupHandler, m *metrics.Metrics, logger log.Logger) *Consumer {
	cons := &Consumer{
		exchange: "user.events",
		queue:    "ambassador-tracker.user-registered",
		handler:  handler,
		metrics:  m,
		log:      log.NewHelper(log.With(logger, "module", "rabbitmq")),
	}
	if c != nil {
		cons.url = c.Url
		if c.Exchange != "" {
			cons.exchange = c.Exchange
		}
		if c.Queue != "" {
			cons.queue = c.Queue
		}
	}
	return cons
}

// Enabled reports whether a broker is configured.
func (c *Consumer) Enabled() bool {
	return c.url != ""
}

// Start declares the topology and consumes in the background until ctx is
// done or Stop is called.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.Enabled() {
		c.log.Info("rabbitmq url not set, signup consumer disabled")
		return nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := c.declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, ch
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.consume(ctx, msgs, c.done)
	c.log.Infof("signup consumer started (exchange=%s queue=%s)", c.exchange, c.queue)
	return nil
}

func (c *Consumer) declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, UserRegisteredKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to %s: %w", UserRegisteredKey, err)
	}
	return nil
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			c.log.Info("signup consumer shutting down")
			return
		case <-done:
			return
		case msg, ok := <-msgs:
			if !ok {
				c.log.Warn("signup consumer channel closed")
				return
			}
			c.handleDelivery(msg)
		}
	}
}

// handleDelivery acks everything it could parse. Signup handling never
// fails, so redelivery would not help; unparsable messages are rejected.
func (c *Consumer) handleDelivery(msg amqp.Delivery) {
	var evt UserRegistered
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		c.log.Errorf("failed to unmarshal user.registered event: %v", err)
		c.metrics.SignupEvents.WithLabelValues("invalid").Inc()
		_ = msg.Nack(false, false)
		return
	}

	if !strings.EqualFold(strings.TrimSpace(evt.Role), roleAmbassador) {
		c.metrics.SignupEvents.WithLabelValues("ignored").Inc()
		_ = msg.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	result := "noop"
	if out := c.handler.HandleAmbassadorSignup(ctx, evt.Email); out == nil {
		result = "failed"
	} else if out.Count > 0 {
		result = "transitioned"
	}
	c.metrics.SignupEvents.WithLabelValues(result).Inc()
	c.log.Debugf("user.registered %s handled: %s", evt.UserID, result)
	_ = msg.Ack(false)
}

// Stop closes the channel and the connection.
func (c *Consumer) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
