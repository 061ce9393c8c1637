package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"medichain-server/internal/config"
)

// Mailer is the notification collaborator contract. Sends are best-effort
// everywhere: callers log failures and never propagate them.
type Mailer interface {
	Send(to, subject, html string) error
}

// SMTPMailer sends HTML mail over SMTP.
type SMTPMailer struct {
	cfg    config.MailerConfig
	logger *zap.Logger
}

// NewSMTPMailer builds a mailer from configuration.
func NewSMTPMailer(cfg config.MailerConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: log}
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	if m.cfg.Host == "" {
		m.logger.Debug("Mailer not configured, dropping message",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.DefaultFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.DefaultFrom, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// AccessRequestEmail renders the notification sent to a patient when a
// doctor requests access to their records.
func AccessRequestEmail(doctorName, purpose, appURL string) (subject, html string) {
	subject = "New Medical Record Access Request - MediChain"
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0A3D62;">Medical Record Access Request</h2>
  <p>Hello,</p>
  <p>Dr. %s has requested access to your medical records for:</p>
  <blockquote style="background: #f9f9f9; padding: 10px; border-left: 4px solid #16A085;">%s</blockquote>
  <p>Please log in to your MediChain account to approve or deny this request.</p>
  <a href="%s/patient/access" style="background: #0A3D62; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Review Request</a>
  <p style="margin-top: 30px; color: #666; font-size: 14px;">This is an automated message from MediChain. Please do not reply to this email.</p>
</div>`, doctorName, purpose, appURL)
	return subject, html
}

// AccessGrantedEmail renders the notification sent to a doctor when a
// patient grants them consent.
func AccessGrantedEmail(patientName, appURL string) (subject, html string) {
	subject = "Medical Record Access Granted - MediChain"
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16A085;">Access Granted</h2>
  <p>Hello Doctor,</p>
  <p>%s has granted you access to their medical records.</p>
  <p>You can now view their records through your MediChain dashboard.</p>
  <a href="%s/doctor/patients" style="background: #16A085; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">View Records</a>
</div>`, patientName, appURL)
	return subject, html
}
