package email

import (
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier is the outbound notification boundary. Sends are fire-and-forget
// from the caller's perspective; a failure is logged and never rolls back the
// state change that triggered it.
type Notifier interface {
	SendApplicationStatusChanged(toEmail, toName, term, status string) error
	SendMissingInfoRequest(toEmail, toName string, items []string, note string) error
	SendSponsorshipReceived(toEmail, toName string, amountUSD float64) error
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

// SMTPNotifier implements Notifier over plain SMTP
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates a new SMTPNotifier
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{config: config, logger: logger}
}

// SendApplicationStatusChanged notifies a student that an admin moved their
// application to a new status.
func (s *SMTPNotifier) SendApplicationStatusChanged(toEmail, toName, term, status string) error {
	subject := fmt.Sprintf("Your %s application is now %s", term, status)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>Your funding application for <strong>%s</strong> has been moved to status <strong>%s</strong>.</p>
				<p>Log in to your account to see the details.</p>
				<p>Best regards,<br>The ScholarBridge Team</p>
			</div>
		</body>
		</html>
	`, toName, term, status)
	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendMissingInfoRequest forwards a field officer's missing-information
// request to the student.
func (s *SMTPNotifier) SendMissingInfoRequest(toEmail, toName string, items []string, note string) error {
	subject := "Additional information needed for your application"
	itemList := ""
	for _, item := range items {
		itemList += fmt.Sprintf("<li>%s</li>", item)
	}
	noteBlock := ""
	if strings.TrimSpace(note) != "" {
		noteBlock = fmt.Sprintf("<p>Note from the reviewing officer: %s</p>", note)
	}
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>The officer reviewing your application needs the following:</p>
				<ul>%s</ul>
				%s
				<p>Please upload the requested items to avoid delays.</p>
				<p>Best regards,<br>The ScholarBridge Team</p>
			</div>
		</body>
		</html>
	`, toName, itemList, noteBlock)
	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendSponsorshipReceived tells a student a donor has committed funding.
func (s *SMTPNotifier) SendSponsorshipReceived(toEmail, toName string, amountUSD float64) error {
	subject := "A donor has sponsored you"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>A donor has committed <strong>$%.2f</strong> towards your education.</p>
				<p>Log in to see your updated funding progress.</p>
				<p>Best regards,<br>The ScholarBridge Team</p>
			</div>
		</body>
		</html>
	`, toName, amountUSD)
	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email via SMTP. With no credentials configured
// the message is logged instead, which keeps development environments quiet.
func (s *SMTPNotifier) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - notification not sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
