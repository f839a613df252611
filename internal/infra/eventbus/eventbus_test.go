package eventbus

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"ambassador-tracker/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EventBusTestSuite struct {
	suite.Suite
	sut *EventBus
}

func TestEventBusTestSuite(t *testing.T) {
	suite.Run(t, new(EventBusTestSuite))
}

func (s *EventBusTestSuite) SetupTest() {
	s.sut = NewEventBus(watermill.NopLogger{})
}

func (s *EventBusTestSuite) TearDownTest() {
	s.sut.Close()
}

func (s *EventBusTestSuite) TestPublishWithoutSubscribers() {
	err := s.sut.Publish(context.Background(), event.NewClickRecorded("abc123", "widget-1", "203.0.113.7"))

	s.NoError(err)
}

func (s *EventBusTestSuite) TestEncodeDecode() {
	evt := event.NewClickRecorded("abc123", "widget-1", "203.0.113.7")

	msg, err := Encode(evt)
	s.Require().NoError(err)
	env, err := Decode(msg)
	s.Require().NoError(err)

	s.Equal(evt.EventID(), msg.UUID)
	s.Equal("click.recorded", msg.Metadata.Get("event_name"))
	s.Equal("abc123", msg.Metadata.Get("subject"))
	s.Equal(evt.EventID(), env.EventID)
	s.Equal("abc123", env.Subject)
	s.True(evt.OccurredAt().Equal(env.OccurredAt))
	s.JSONEq(`"widget-1"`, string(mustField(s.T(), env.Payload, "widget_id")))
}

func (s *EventBusTestSuite) TestPublishUsesEventTopic() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	clicks, err := s.sut.Subscriber().Subscribe(ctx, Topic(event.ClickRecordedName))
	s.Require().NoError(err)
	invitations, err := s.sut.Subscriber().Subscribe(ctx, Topic(event.InvitationStatusChangedName))
	s.Require().NoError(err)

	s.Require().NoError(s.sut.Publish(ctx, event.NewClickRecorded("test123", "widget-1", "203.0.113.7")))

	select {
	case msg := <-clicks:
		env, err := Decode(msg)
		s.NoError(err)
		s.Equal("test123", env.Subject)
		msg.Ack()
	case <-ctx.Done():
		s.Fail("timeout waiting for message")
	}
	select {
	case msg := <-invitations:
		s.Failf("unexpected delivery", "got %s on the invitation topic", msg.UUID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewKratosLoggerAdapter(log.NewStdLogger(&buf)).
		With(watermill.LogFields{"topic": "tracking.click.recorded"})

	adapter.Info("subscribed", watermill.LogFields{"b": 2, "a": 1})
	adapter.Trace("noisy", nil)

	out := buf.String()
	assert.Contains(t, out, "msg=subscribed")
	assert.Contains(t, out, "module=eventbus")
	assert.Contains(t, out, "topic=tracking.click.recorded")
	assert.Contains(t, out, "a=1 b=2")
	assert.NotContains(t, out, "noisy")
}

func mustField(t *testing.T, payload []byte, name string) []byte {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &fields))
	return fields[name]
}
