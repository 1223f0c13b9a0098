package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/resumeforge/resumeforge/internal/config"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

// EmailClient wraps the Resend API client.
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
}

func NewEmailClient(cfg *config.Configuration) *EmailClient {
	var client *resend.Client
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		client = resend.NewClient(cfg.Email.APIKey)
	}
	return &EmailClient{
		client:      client,
		enabled:     client != nil,
		fromAddress: cfg.Email.FromAddress,
	}
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends an email and returns the provider message id.
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").Mark(ierr.ErrSystem)
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithMessage("failed to send email").
			Mark(ierr.ErrHTTPClient)
	}
	return sent.Id, nil
}
