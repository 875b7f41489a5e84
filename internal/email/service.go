// Package email sends the report share mail via SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/locm1/nippo/internal/config"
)

// Sender is the narrow contract the share handler needs; tests substitute a
// recording fake.
type Sender interface {
	SendShareMail(recipient, reportTitle, shareURL string) error
}

type Service struct {
	host     string
	port     string
	from     string
	fromName string
	auth     smtp.Auth
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		fromName: cfg.SMTPFromName,
		auth:     smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
	}
}

// IsConfigured returns true if SMTP is configured.
func (s *Service) IsConfigured() bool {
	return s.host != "" && s.port != "" && s.from != ""
}

// SendShareMail delivers the share notification for an already
// visibility-checked report. The caller is responsible for the public check;
// this layer only formats and sends.
func (s *Service) SendShareMail(recipient, reportTitle, shareURL string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	subject := fmt.Sprintf("日報「%s」が共有されました", reportTitle)
	body := shareMailHTML(reportTitle, shareURL)

	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n%s\r\n", body)

	return smtp.SendMail(s.host+":"+s.port, s.auth, s.from, []string{recipient}, []byte(msg.String()))
}

func shareMailHTML(reportTitle, shareURL string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>日報が共有されました</h2>
  <p>「<strong>%s</strong>」という日報が共有されました。</p>
  <p><a href="%s">日報を閲覧する</a></p>
  <p style="color: #999; font-size: 12px;">このメールは日報太郎から自動送信されました。</p>
</div>`, reportTitle, shareURL)
}
