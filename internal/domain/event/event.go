package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact raised by a use case after its write succeeded.
type Event interface {
	// EventID is unique per raised event.
	EventID() string
	// EventName doubles as the bus topic.
	EventName() string
	OccurredAt() time.Time
	// Subject identifies the record the event is about: a click id or an
	// invited email.
	Subject() string
}

// Base carries the fields shared by every event.
type Base struct {
	ID   string    `json:"event_id"`
	At   time.Time `json:"occurred_at"`
	Subj string    `json:"subject"`
}

// NewBase stamps a new event about subject.
func NewBase(subject string) Base {
	return Base{
		ID:   uuid.Must(uuid.NewV7()).String(),
		At:   time.Now().UTC(),
		Subj: subject,
	}
}

func (b Base) EventID() string       { return b.ID }
func (b Base) OccurredAt() time.Time { return b.At }
func (b Base) Subject() string       { return b.Subj }
