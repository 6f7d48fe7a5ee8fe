package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/liberandum/api/internal/model"
	"github.com/resend/resend-go/v2"
)

// EmailService delivers one-time codes. In development no Resend client is
// created and the code is logged instead of sent.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendCode dispatches a one-time code scoped to the given purpose.
func (s *EmailService) SendCode(ctx context.Context, email, code string, purpose model.CodePurpose) error {
	var subject, body string
	switch purpose {
	case model.PurposeRegistration:
		subject, body = registrationCodeTemplate(code, s.appName)
	case model.PurposeLogin:
		subject, body = loginCodeTemplate(code, s.appName)
	default:
		return fmt.Errorf("unknown code purpose: %s", purpose)
	}

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "one_time_code", "purpose", purpose, "to", email, "code", code)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "one_time_code", "purpose", purpose, "to", email)
	}
	return err
}
