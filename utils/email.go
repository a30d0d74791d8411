package utils

import (
	"fmt"
	"html"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// sendFunc delivers one message through a provider
type sendFunc func(toEmail, toName, subject, htmlContent, textContent string) error

// EmailService sends transactional emails through Postmark or SendGrid.
// With no provider configured it only logs what it would have sent.
type EmailService struct {
	sender string
	send   sendFunc
	logger *zap.Logger
}

// NewEmailService picks the provider named in cfg.MailProvider
func NewEmailService(cfg Config, logger *zap.Logger) *EmailService {
	es := &EmailService{sender: cfg.EmailSender, logger: logger}

	switch cfg.MailProvider {
	case MailProviderPostmark:
		client := postmark.NewClient(cfg.PostmarkAPIToken, "")
		es.send = func(toEmail, _, subject, htmlContent, textContent string) error {
			_, err := client.SendEmail(postmark.Email{
				From:     es.sender,
				To:       toEmail,
				Subject:  subject,
				HtmlBody: htmlContent,
				TextBody: textContent,
			})
			return err
		}
	case MailProviderSendgrid:
		client := sendgrid.NewSendClient(cfg.SendgridAPIKey)
		es.send = func(toEmail, toName, subject, htmlContent, textContent string) error {
			message := mail.NewSingleEmail(
				mail.NewEmail("Shop", es.sender),
				subject,
				mail.NewEmail(toName, toEmail),
				textContent,
				htmlContent,
			)
			resp, err := client.Send(message)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
			}
			return nil
		}
	}
	return es
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, toName, subject, htmlContent, textContent string) error {
	if es.send == nil {
		es.logger.Info("email not sent, no mail provider configured",
			zap.String("to", toEmail), zap.String("subject", subject))
		return nil
	}
	if err := es.send(toEmail, toName, subject, htmlContent, textContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.logger.Debug("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// SendWelcomeEmail greets a newly registered customer
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	if name == "" {
		name = "Customer"
	}
	subject := "Welcome to the shop"
	text := fmt.Sprintf("Dear %s,\n\nYour account has been created. Happy shopping!", name)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your account has been created. Happy shopping!",
		html.EscapeString(name),
	)
	return es.SendEmail(toEmail, name, subject, htmlContent, text)
}
