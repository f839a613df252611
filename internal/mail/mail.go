// Package mail delivers ambassador invitation emails.
package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"ambassador-tracker/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is mail providers.
var ProviderSet = wire.NewSet(NewMailer, NewLinkBuilder)

// Invitation is the content of one invitation email.
type Invitation struct {
	To             string
	AmbassadorName string
	UniversityName string
	ReplyTo        string
	SignupURL      string
	AcceptURL      string
	DeclineURL     string
}

// Mailer sends invitation emails.
type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// NewMailer picks the delivery driver. Anything but "ses" logs the message
// instead of sending it.
func NewMailer(c *conf.Mail, logger log.Logger) (Mailer, error) {
	if c != nil && strings.EqualFold(c.Driver, "ses") {
		return NewSESMailer(context.Background(), c.Region, c.FromEmail, c.FromName)
	}
	return NewLogMailer(logger), nil
}

// LinkBuilder renders the links embedded in an invitation.
type LinkBuilder struct {
	frontendURL string
	apiURL      string
}

// NewLinkBuilder creates a LinkBuilder from the mail and tracking settings.
func NewLinkBuilder(m *conf.Mail, t *conf.Tracking) *LinkBuilder {
	lb := &LinkBuilder{}
	if m != nil {
		lb.frontendURL = strings.TrimRight(m.FrontendUrl, "/")
	}
	if t != nil {
		lb.apiURL = strings.TrimRight(t.PublicBaseUrl, "/")
	}
	return lb
}

// Signup links to the frontend signup page prefilled with the invitee.
func (b *LinkBuilder) Signup(universityName, email string) string {
	q := url.Values{}
	q.Set("invitedBy", universityName)
	q.Set("email", email)
	return fmt.Sprintf("%s/auth/signup?%s", b.frontendURL, q.Encode())
}

// Respond links to the public accept or decline endpoint. The email is the token.
func (b *LinkBuilder) Respond(email, action string) string {
	return fmt.Sprintf("%s/api/university/invitations/%s/%s", b.apiURL, url.PathEscape(email), action)
}

// Build fills the links of an invitation.
func (b *LinkBuilder) Build(inv Invitation) Invitation {
	inv.SignupURL = b.Signup(inv.UniversityName, inv.To)
	inv.AcceptURL = b.Respond(inv.To, "accept")
	inv.DeclineURL = b.Respond(inv.To, "decline")
	return inv
}

var _ Mailer = (*LogMailer)(nil)

// LogMailer writes invitations to the log. Used in development.
type LogMailer struct {
	log *log.Helper
}

func NewLogMailer(logger log.Logger) *LogMailer {
	return &LogMailer{log: log.NewHelper(log.With(logger, "module", "mail"))}
}

func (m *LogMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	subject, _, _, err := Render(inv)
	if err != nil {
		return err
	}
	m.log.WithContext(ctx).Infow(
		"msg", "invitation email (not sent)",
		"to", inv.To,
		"subject", subject,
		"signup_url", inv.SignupURL,
		"accept_url", inv.AcceptURL,
	)
	return nil
}
