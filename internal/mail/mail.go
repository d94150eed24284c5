// Package mail holds the email transports.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/config"
)

// Sender transmits one rendered email.
type Sender interface {
	Send(ctx context.Context, address, subject, body string) error
}

// New selects a transport from configuration.
func New(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch strings.ToLower(cfg.Transport) {
	case "", "log":
		return NewLogSender(logger), nil
	case "smtp":
		if cfg.Host == "" || cfg.Port == "" {
			return nil, fmt.Errorf("smtp transport requires MAIL_SMTP_HOST and MAIL_SMTP_PORT")
		}
		return NewSMTPSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender from configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
}

// Send delivers an HTML message to address.
func (s *SMTPSender) Send(ctx context.Context, address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.username != "" && s.password != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	msg := BuildMessage(s.from, address, subject, body, time.Now())
	if err := s.sendMail(s.addr, auth, s.from, []string{address}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", address, err)
	}
	return nil
}

// BuildMessage renders RFC 5322 headers followed by an HTML body.
func BuildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogSender writes emails to the log instead of sending them. Used in development.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender. logger may be nil.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("email",
		zap.String("to", address),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}
