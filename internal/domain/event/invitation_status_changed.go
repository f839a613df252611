package event

// InvitationStatusChangedName is the event name for invitation transitions.
const InvitationStatusChangedName = "invitation.status_changed"

// InvitationStatusChanged is raised when one or more invitations for an
// email move to a new status, either by an explicit response or by signup.
type InvitationStatusChanged struct {
	Base
	Email  string `json:"email"`
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Count  int64  `json:"count"`
	Source string `json:"source"`
}

// NewInvitationStatusChanged creates a new InvitationStatusChanged event.
func NewInvitationStatusChanged(email, from, to string, count int64, source string) InvitationStatusChanged {
	return InvitationStatusChanged{
		Base:   NewBase(email),
		Email:  email,
		From:   from,
		To:     to,
		Count:  count,
		Source: source,
	}
}

// EventName returns the event name.
func (e InvitationStatusChanged) EventName() string {
	return InvitationStatusChangedName
}
