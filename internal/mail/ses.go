package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var _ Mailer = (*SESMailer)(nil)

// sesAPI is the subset of the SES client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends emails via AWS SES.
type SESMailer struct {
	client    sesAPI
	fromEmail string
	fromName  string
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region, fromEmail, fromName string) (*SESMailer, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESMailer(ses.NewFromConfig(cfg), fromEmail, fromName), nil
}

func newSESMailer(client sesAPI, fromEmail, fromName string) *SESMailer {
	return &SESMailer{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (m *SESMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	subject, htmlBody, textBody, err := Render(inv)
	if err != nil {
		return err
	}

	// The university name is shown as sender, replies go to the university.
	fromName := m.fromName
	if inv.UniversityName != "" {
		fromName = inv.UniversityName
	}
	from := m.fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%q <%s>", fromName, m.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{inv.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	if inv.ReplyTo != "" {
		input.ReplyToAddresses = []string{inv.ReplyTo}
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
