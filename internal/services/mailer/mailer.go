// Package mailer sends transactional email through SendGrid.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const fromName = "Micro8gents"

type Service struct {
	client *sendgrid.Client
	from   string
	log    *zap.Logger
}

func New(apiKey, from string, log *zap.Logger) *Service {
	s := &Service{from: from, log: log}
	if apiKey != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}
	return s
}

func (s *Service) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg := PasswordResetMessage(s.from, to, resetURL)

	if s.client == nil {
		s.log.Info("[mock] sendgrid password reset", zap.String("to", to), zap.String("reset_url", resetURL))
		return nil
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func PasswordResetMessage(from, to, resetURL string) *mail.SGMailV3 {
	text := fmt.Sprintf(`Micro8gents Password Reset

Hello,

We received a request to reset your password. Please visit the following link to set a new password:

%s

If you didn't request this password reset, you can safely ignore this email.

This link will expire in 1 hour for security reasons.

Thanks,
The Micro8gents Team
`, resetURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4F46E5; margin-bottom: 20px;">Micro8gents Password Reset</h2>
  <p>Hello,</p>
  <p>We received a request to reset your password. Click the button below to set a new password:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
  </div>
  <p>If you didn't request this password reset, you can safely ignore this email.</p>
  <p>This link will expire in 1 hour for security reasons.</p>
  <p>Thanks,<br>The Micro8gents Team</p>
</div>`, resetURL)

	return mail.NewSingleEmail(
		mail.NewEmail(fromName, from),
		"Reset Your Micro8gents Password",
		mail.NewEmail("", to),
		text,
		html,
	)
}
