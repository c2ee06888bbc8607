package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer defines the interface for outbound email. Delivery is best-effort:
// callers fire-and-forget and a failed send must never fail the request that
// triggered it.
type Mailer interface {
	SendStatusChangeEmail(toEmail, toName, oldStatus, newStatus string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPMailer implements Mailer over gomail.
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logger,
	}
}

// SendStatusChangeEmail notifies an applicant that staff changed their
// application status.
func (m *SMTPMailer) SendStatusChangeEmail(toEmail, toName, oldStatus, newStatus string) error {
	// Without SMTP credentials (local development) log the email instead of
	// sending it and report success.
	if m.config.Host == "" || m.config.Username == "" {
		m.logger.Warn().
			Str("toEmail", toEmail).
			Str("oldStatus", oldStatus).
			Str("newStatus", newStatus).
			Msg("SMTP credentials not configured - status change email not sent")
		return nil
	}

	subject := "Your application status has been updated"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Application Status Update</h2>
				<p>Hello %s,</p>
				<p>The status of your application has changed from <strong>%s</strong> to <strong>%s</strong>.</p>
				<p>You can sign in to your account to review the details and any messages from our staff.</p>
				<p>Best regards,<br>The Admissions Office</p>
			</div>
		</body>
		</html>
	`, toName, oldStatus, newStatus)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.config.FromEmail, m.config.FromName)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.config.Host, m.config.Port, m.config.Username, m.config.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send status change email")
		return fmt.Errorf("failed to send status change email: %w", err)
	}

	m.logger.Info().Str("toEmail", toEmail).Str("newStatus", newStatus).Msg("Status change email sent")
	return nil
}
