package mailer

import (
	"fmt"
	"html"
	"strings"

	"legal-aid-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendOTP(toEmail, otp string) error
	SendResetCode(toEmail, otp string) error
	SendReplyCopy(toEmail, fullName, fileName, replyText string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string, logger logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		clientURL:   clientURL,
		logger:      logger,
	}
}

func (s *emailService) SendOTP(toEmail, otp string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to Legal Aid!</h2>
			<p>Your verification code is:</p>
			<h1 style="color: #1F4E79; letter-spacing: 5px;">%s</h1>
			<p>This code will expire in 15 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, otp)

	return s.send(toEmail, "Your Verification Code", body, "otp")
}

func (s *emailService) SendResetCode(toEmail, otp string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password Reset Request</h2>
			<p>Use the code below on the reset page at <a href="%s/reset-password">%s</a>:</p>
			<h1 style="color: #1F4E79; letter-spacing: 5px;">%s</h1>
			<p>This code will expire in 15 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, s.clientURL, s.clientURL, otp)

	return s.send(toEmail, "Reset Your Password", body, "reset_code")
}

// SendReplyCopy mails the saved reply letter. The letter is escaped and
// line breaks are kept.
func (s *emailService) SendReplyCopy(toEmail, fullName, fileName, replyText string) error {
	letter := strings.ReplaceAll(html.EscapeString(replyText), "\n", "<br/>")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your reply is ready</h2>
			<p>Hello %s,</p>
			<p>Here is a copy of the reply you saved for <strong>%s</strong>. You can download it again from your history at <a href="%s/history">%s</a>.</p>
			<hr/>
			<div style="font-family: 'Times New Roman', serif; line-height: 1.5;">%s</div>
		</div>
	`, html.EscapeString(fullName), html.EscapeString(fileName), s.clientURL, s.clientURL, letter)

	return s.send(toEmail, "Copy of your notice reply", body, "reply_copy")
}

func (s *emailService) send(toEmail, subject, body, kind string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send email", map[string]interface{}{
			"to":    toEmail,
			"kind":  kind,
			"error": err.Error(),
		})
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	s.logger.Info("MAILER", "Email sent", map[string]interface{}{"to": toEmail, "kind": kind})
	return nil
}
