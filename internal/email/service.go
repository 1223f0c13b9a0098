package email

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/resumeforge/resumeforge/internal/logger"
)

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	"cancellation-confirmation.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your subscription has been canceled</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p>Your ResumeForge subscription has been canceled and will not renew.</p>
    {{if .end_date}}<p>You keep full access to every resume example and guide until <strong>{{.end_date}}</strong>.</p>{{end}}
    <p>Changed your mind? You can resubscribe any time from your account page.</p>
    <p>— The ResumeForge team</p>
</body>
</html>`,
}

// Sender is the part of the email service the cancellation flow uses.
type Sender interface {
	SendCancellationConfirmation(ctx context.Context, toAddress string, effectiveEnd *time.Time) error
}

// Service handles email operations
type Service struct {
	client *EmailClient
	logger *logger.Logger
}

func NewService(client *EmailClient, logger *logger.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// SendCancellationConfirmation emails the effective end-of-access date after
// a successful cancellation. Best effort: callers log and continue on error.
func (s *Service) SendCancellationConfirmation(ctx context.Context, toAddress string, effectiveEnd *time.Time) error {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping cancellation confirmation",
			"to", toAddress,
		)
		return nil
	}
	if toAddress == "" {
		s.logger.Warnw("no email address for cancellation confirmation")
		return nil
	}

	data := map[string]interface{}{}
	if effectiveEnd != nil {
		data["end_date"] = effectiveEnd.Format("January 2, 2006")
	}

	tmpl, err := template.New("cancellation-confirmation").
		Parse(emailTemplates["cancellation-confirmation.html"])
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}

	messageID, err := s.client.SendEmail(ctx,
		s.client.GetFromAddress(),
		toAddress,
		"Your subscription has been canceled",
		body.String(),
		"",
	)
	if err != nil {
		s.logger.Errorw("failed to send cancellation confirmation",
			"error", err,
			"to", toAddress,
		)
		return err
	}

	s.logger.Infow("cancellation confirmation sent",
		"message_id", messageID,
		"to", toAddress,
	)
	return nil
}
