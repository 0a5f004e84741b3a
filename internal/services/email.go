package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/pkg/logger"
)

// MailService sends collaborator-invite notifications. Delivery is best
// effort: a disabled or unconfigured SMTP section turns Send into a no-op
// and send failures are logged, never surfaced to the request.
type MailService struct {
	cfg config.SMTPConfig
}

func NewMailService(cfg config.SMTPConfig) *MailService {
	return &MailService{cfg: cfg}
}

// SendInvite notifies a user that they were added to a project.
func (s *MailService) SendInvite(email, displayName, projectName string) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		return nil
	}

	subject := fmt.Sprintf("You've been added to %s", projectName)
	body := s.buildInviteBody(displayName, projectName)

	if err := s.send([]string{email}, subject, body); err != nil {
		return err
	}
	logger.Infof("[Mail] Sent invite notification to %s", email)
	return nil
}

func (s *MailService) buildInviteBody(displayName, projectName string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Hi %s,</h2>", displayName))
	sb.WriteString(fmt.Sprintf("<p>You have been added as a collaborator on the project <b>%s</b>.</p>", projectName))
	sb.WriteString("<p>Sign in to view the project's research stacks, insights and documents.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *MailService) send(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseTLS {
		return s.sendTLS(addr, auth, from, to, message.String())
	}
	return smtp.SendMail(addr, auth, from, to, []byte(message.String()))
}

func (s *MailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
