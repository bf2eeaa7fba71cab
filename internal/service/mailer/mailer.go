// Outbound confirmation mail.
// Sends are fire-and-forget at the call site: failures are logged by the
// caller and never retried.
package mailer

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/avelichko/contactkeeper/internal/logger"
	"github.com/avelichko/contactkeeper/internal/service/auth"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Public base URL of this service, used to build links in the mail
	BaseURL string
}

// SMTP-backed notifier
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address must not be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}

	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, mail auth.ConfirmationMail) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("bad from address: %w", err)
	}
	if err := msg.To(mail.Email); err != nil {
		return fmt.Errorf("bad to address: %w", err)
	}

	msg.Subject("Confirm your email")
	msg.SetBodyString(gomail.TypeTextHTML, confirmationBody(m.cfg.BaseURL, mail))

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client error: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	// The smtps port speaks TLS from the first byte, every other port
	// upgrades via STARTTLS
	if m.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	return gomail.NewClient(m.cfg.Host, opts...)
}

// Log-only notifier for development and tests: prints the confirmation
// link instead of delivering it
type LogMailer struct {
	baseURL string
	logger  logger.Logger
}

func NewLogMailer(baseURL string, l logger.Logger) *LogMailer {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	return &LogMailer{baseURL: baseURL, logger: l}
}

func (m *LogMailer) SendConfirmation(_ context.Context, mail auth.ConfirmationMail) error {
	m.logger.Info("confirmation mail",
		"email", mail.Email,
		"username", mail.Username,
		"confirm_url", ConfirmURL(m.baseURL, mail.Token),
	)
	return nil
}

func ConfirmURL(baseURL string, token string) string {
	return strings.TrimRight(baseURL, "/") + "/api/auth/confirmed_email/" + token
}

func TrackingURL(baseURL string, username string) string {
	return strings.TrimRight(baseURL, "/") + "/api/mail_tracking/" + username
}

func confirmationBody(baseURL string, mail auth.ConfirmationMail) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Please confirm your email by following <a href="%s">this link</a>.</p>
<p>The link is valid for 7 days. If you did not create this account, ignore this mail.</p>
<img src="%s" width="1" height="1" alt="">`,
		mail.Username,
		ConfirmURL(baseURL, mail.Token),
		TrackingURL(baseURL, mail.Username),
	)
}
