package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ClickRepository persists click events. Rows are append-only apart from the
// enrichment and answer columns.
type ClickRepository interface {
	// Create inserts a new click event.
	Create(ctx context.Context, click *ClickEvent) error

	// FindByID returns nil if the click does not exist.
	FindByID(ctx context.Context, id string) (*ClickEvent, error)

	// SetCountryIfNull stores the country only while it is still unset.
	// It reports whether a row was updated.
	SetCountryIfNull(ctx context.Context, id, country string) (bool, error)

	// SaveAnswers writes each answer only if its column is still null and
	// overwrites the chosen ambassador when one is supplied.
	// It reports false when the click does not exist.
	SaveAnswers(ctx context.Context, answers ClickAnswers) (bool, error)

	// ListByWidget returns every click of a widget, most recent first.
	ListByWidget(ctx context.Context, widgetID string) ([]*ClickEvent, error)

	// CountByWidget returns the number of clicks of a widget.
	CountByWidget(ctx context.Context, widgetID string) (int64, error)

	// CountByCountry groups the clicks of a widget by country.
	// Clicks without a country are reported under UnknownCountry.
	CountByCountry(ctx context.Context, widgetID string) ([]CountryCount, error)
}

// InvitationRepository persists invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv *Invitation) error

	// FindLatestByEmail returns the most recently sent invitation for email, or nil.
	FindLatestByEmail(ctx context.Context, email string) (*Invitation, error)

	// FindActive returns the newest INVITED or ACCEPTED invitation of a
	// university for email, or nil.
	FindActive(ctx context.Context, universityID, email string) (*Invitation, error)

	// ListByUniversity returns invitations newest first. A zero limit means no limit.
	ListByUniversity(ctx context.Context, universityID string, offset, limit int) ([]*Invitation, error)

	// ListByUniversityAndStatus returns invitations of a university in status.
	ListByUniversityAndStatus(ctx context.Context, universityID string, status InvitationStatus) ([]*Invitation, error)

	// CountByStatus returns a zero-filled tally for a university.
	CountByStatus(ctx context.Context, universityID string) (StatusCounts, error)

	// CountByEmailAndStatus counts invitations of any university for email in status.
	CountByEmailAndStatus(ctx context.Context, email string, status InvitationStatus) (int64, error)

	// TransitionByEmail moves every invitation for email from one status to
	// another and stamps responded_at. It returns the number of rows changed.
	TransitionByEmail(ctx context.Context, email string, from, to InvitationStatus, at time.Time) (int64, error)
}

// WidgetRepository persists the widget directory.
type WidgetRepository interface {
	Create(ctx context.Context, w *Widget) error
	UpdateConfig(ctx context.Context, id string, config json.RawMessage) error

	// FindByID returns nil if the widget does not exist.
	FindByID(ctx context.Context, id string) (*Widget, error)

	// FindByOwner returns the most recent widget of a university, or nil.
	FindByOwner(ctx context.Context, universityID string) (*Widget, error)

	// MarkVerified sets the verified flag and last-seen metadata.
	MarkVerified(ctx context.Context, id, domain string, at time.Time) error
}

// LoadHistory keeps the most recent load beacons per widget.
type LoadHistory interface {
	// Append records a load, evicting the oldest beyond LoadHistorySize.
	Append(ctx context.Context, widgetID string, load IntegrationLoad) error

	// Recent returns the retained loads, newest first.
	Recent(ctx context.Context, widgetID string) ([]IntegrationLoad, error)
}
