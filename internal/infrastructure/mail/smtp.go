package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

// ErrMailMisconfigured is wrapped by Validate for every missing setting.
var ErrMailMisconfigured = errors.New("email is misconfigured")

const (
	maxAttempts    = 3
	defaultBackoff = 2 * time.Second
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers reports over SMTP with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	server     string
	port       int
	username   string
	password   string
	recipients []string
	bcc        []string

	send    sendFunc
	backoff time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ ports.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer from configuration.
func NewSMTPMailer(cfg config.EmailConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		server:     cfg.SMTPServer,
		port:       cfg.SMTPPort,
		username:   cfg.Username,
		password:   cfg.Password,
		recipients: cfg.Recipients,
		bcc:        cfg.Bcc,
		send:       smtp.SendMail,
		backoff:    defaultBackoff,
		now:        time.Now,
		logger:     log,
	}
}

// Validate reports every missing setting at once.
func (m *SMTPMailer) Validate() error {
	var missing []string
	if m.username == "" {
		missing = append(missing, "username")
	}
	if m.password == "" {
		missing = append(missing, "password")
	}
	if len(m.recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if m.server == "" {
		missing = append(missing, "smtp server")
	}
	if m.port <= 0 {
		missing = append(missing, "smtp port")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMailMisconfigured, strings.Join(missing, ", "))
	}
	return nil
}

// SendReport mails the report with the Markdown as plain text, the HTML as the
// rich alternative and the given files attached.
func (m *SMTPMailer) SendReport(ctx context.Context, report domain.Report, content domain.MailContent) error {
	if err := m.Validate(); err != nil {
		return err
	}

	msg := message{
		From:        m.username,
		To:          m.recipients,
		Subject:     fmt.Sprintf("%s - %s", report.Title(), report.Date().Format("2006/01/02")),
		Date:        m.now(),
		Text:        string(content.Markdown),
		HTML:        string(content.HTML),
		Attachments: content.Attachments,
	}
	if msg.Text == "" {
		msg.Text = fmt.Sprintf("%s\n\nTotal articles: %d\nJournals covered: %d\n",
			msg.Subject, report.TotalArticles(), len(report.JournalsCovered()))
	}

	return m.deliver(ctx, msg)
}

// SendTest sends a short plain-text message to the configured recipients.
func (m *SMTPMailer) SendTest(ctx context.Context) error {
	if err := m.Validate(); err != nil {
		return err
	}
	now := m.now()
	return m.deliver(ctx, message{
		From:    m.username,
		To:      m.recipients,
		Subject: "Nature Daily test email",
		Date:    now,
		Text:    fmt.Sprintf("This is a test email from Nature Daily, sent at %s.\n", now.Format("2006-01-02 15:04:05")),
	})
}

func (m *SMTPMailer) deliver(ctx context.Context, msg message) error {
	raw, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	envelope := append(append([]string(nil), m.recipients...), m.bcc...)
	addr := net.JoinHostPort(m.server, strconv.Itoa(m.port))
	auth := smtp.PlainAuth("", m.username, m.password, m.server)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := m.backoff * time.Duration(1<<(attempt-2))
			m.warn("retrying email send", "attempt", attempt, "wait", wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
		}

		if lastErr = m.send(addr, auth, m.username, envelope, raw); lastErr == nil {
			m.info("email sent", "subject", msg.Subject, "recipients", len(m.recipients), "bcc", len(m.bcc))
			return nil
		}
		m.warn("email send failed", "attempt", attempt, "max", maxAttempts, "error", lastErr)
	}
	return fmt.Errorf("send email after %d attempts: %w", maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *SMTPMailer) info(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *SMTPMailer) warn(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
