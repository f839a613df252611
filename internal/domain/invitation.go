package domain

import (
	"net/mail"
	"strings"
	"time"
)

// InvitationStatus is a step of the invitation lifecycle.
type InvitationStatus string

const (
	StatusInvited  InvitationStatus = "INVITED"
	StatusAccepted InvitationStatus = "ACCEPTED"
	StatusDeclined InvitationStatus = "DECLINED"
	StatusJoined   InvitationStatus = "JOINED"
)

// AllStatuses lists every lifecycle state in display order.
var AllStatuses = []InvitationStatus{StatusInvited, StatusAccepted, StatusDeclined, StatusJoined}

// ParseInvitationStatus validates a status name, case-insensitively.
func ParseInvitationStatus(s string) (InvitationStatus, error) {
	st := InvitationStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsExplicitResponse reports whether s can be set by a university or invitee action.
func (s InvitationStatus) IsExplicitResponse() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// IsTerminal reports whether no further transition is expected from s.
func (s InvitationStatus) IsTerminal() bool {
	return s == StatusDeclined || s == StatusJoined
}

// SignupTransition returns the bulk transition applied when an ambassador
// account is created for an invited email. Invitations that were already
// accepted become JOINED; otherwise pending ones are advanced to ACCEPTED.
func SignupTransition(hasAccepted bool) (from, to InvitationStatus) {
	if hasAccepted {
		return StatusAccepted, StatusJoined
	}
	return StatusInvited, StatusAccepted
}

// NormalizeEmail lower-cases and validates an email correlation key.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Invitation is one invitation of an ambassador by a university.
// The ambassador email is a weak reference: it correlates the invitation with
// a later signup but is not unique across time or universities.
type Invitation struct {
	id              string
	universityID    string
	universityName  string
	ambassadorName  string
	ambassadorEmail string
	status          InvitationStatus
	invitedAt       time.Time
	respondedAt     *time.Time
}

// NewInvitation creates an invitation in the INVITED state.
func NewInvitation(id, universityID, universityName, ambassadorName, ambassadorEmail string) (*Invitation, error) {
	email, err := NormalizeEmail(ambassadorEmail)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(universityID) == "" || strings.TrimSpace(ambassadorName) == "" {
		return nil, ErrMissingField
	}
	return &Invitation{
		id:              id,
		universityID:    universityID,
		universityName:  strings.TrimSpace(universityName),
		ambassadorName:  strings.TrimSpace(ambassadorName),
		ambassadorEmail: email,
		status:          StatusInvited,
		invitedAt:       time.Now().UTC(),
	}, nil
}

// ReconstructInvitation rebuilds an invitation from persistence.
func ReconstructInvitation(
	id, universityID, universityName, ambassadorName, ambassadorEmail string,
	status InvitationStatus,
	invitedAt time.Time,
	respondedAt *time.Time,
) *Invitation {
	return &Invitation{
		id:              id,
		universityID:    universityID,
		universityName:  universityName,
		ambassadorName:  ambassadorName,
		ambassadorEmail: ambassadorEmail,
		status:          status,
		invitedAt:       invitedAt,
		respondedAt:     respondedAt,
	}
}

func (i *Invitation) ID() string               { return i.id }
func (i *Invitation) UniversityID() string     { return i.universityID }
func (i *Invitation) UniversityName() string   { return i.universityName }
func (i *Invitation) AmbassadorName() string   { return i.ambassadorName }
func (i *Invitation) AmbassadorEmail() string  { return i.ambassadorEmail }
func (i *Invitation) Status() InvitationStatus { return i.status }
func (i *Invitation) InvitedAt() time.Time     { return i.invitedAt }
func (i *Invitation) RespondedAt() *time.Time  { return i.respondedAt }

// IsActive reports whether the invitation still awaits a signup.
func (i *Invitation) IsActive() bool {
	return i.status == StatusInvited || i.status == StatusAccepted
}

// Respond applies an explicit accept or decline. The previous status is not
// checked, so a university can correct an earlier decision.
func (i *Invitation) Respond(status InvitationStatus, at time.Time) error {
	if !status.IsExplicitResponse() {
		return ErrInvalidStatus
	}
	at = at.UTC()
	i.status = status
	i.respondedAt = &at
	return nil
}

// Reinvite refreshes the invitation for another send.
func (i *Invitation) Reinvite(ambassadorName string, at time.Time) {
	if name := strings.TrimSpace(ambassadorName); name != "" {
		i.ambassadorName = name
	}
	i.invitedAt = at.UTC()
}

// StatusCounts tallies invitations per status. Every status is present.
type StatusCounts map[InvitationStatus]int64

// NewStatusCounts returns a zero-filled tally.
func NewStatusCounts() StatusCounts {
	c := make(StatusCounts, len(AllStatuses))
	for _, s := range AllStatuses {
		c[s] = 0
	}
	return c
}

// Total returns the sum across all statuses.
func (c StatusCounts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}
