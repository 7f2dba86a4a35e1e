package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/folio-sh/folio/config"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	cfg    config.Smtp
	logger *slog.Logger
}

func New(cfg config.Smtp, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

func (m *Mailer) newMail() (*mailyak.MailYak, error) {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	switch m.cfg.AuthMethod {
	case "plain":
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	case "cram-md5":
		auth = smtp.CRAMMD5Auth(m.cfg.Username, m.cfg.Password)
	case "", "none":
		auth = nil
	default:
		return nil, fmt.Errorf("mail: unsupported auth method %q", m.cfg.AuthMethod)
	}

	if m.cfg.UseTLS {
		return mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: m.cfg.Host})
	}
	return mailyak.New(addr, auth), nil
}

// send runs mail.Send in a goroutine so the context deadline is honored.
// mailyak itself has no context support.
func (m *Mailer) send(ctx context.Context, mail *mailyak.MailYak) error {
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SendPasswordResetEmail sends the password reset link for a previously
// created reset token.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	mail, err := m.newMail()
	if err != nil {
		return err
	}

	mail.To(email)
	mail.From(m.cfg.FromAddress)
	mail.FromName(m.cfg.FromName)
	mail.Subject("Password Reset")
	mail.HTML().Set(fmt.Sprintf(`
		<h1>Password Reset</h1>
		<p>A password reset was requested for this address. The link below is valid for one hour and can be used once:</p>
		<p><a href="%s">Reset Password</a></p>
		<p>If you did not request this, you can ignore this email.</p>
	`, resetURL))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	m.logger.Info("sent password reset email", "email", email)
	return nil
}

// SendContactNotification forwards a contact form submission to the
// configured inbox.
func (m *Mailer) SendContactNotification(ctx context.Context, name, from, message string) error {
	mail, err := m.newMail()
	if err != nil {
		return err
	}

	mail.To(m.cfg.FromAddress)
	mail.From(m.cfg.FromAddress)
	mail.FromName(m.cfg.FromName)
	mail.ReplyTo(from)
	mail.Subject(fmt.Sprintf("Contact form: %s", name))
	mail.Plain().Set(fmt.Sprintf("From: %s <%s>\n\n%s", name, from, message))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send contact notification: %w", err)
	}
	return nil
}
