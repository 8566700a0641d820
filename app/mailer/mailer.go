// Package mailer delivers account notification emails over SMTP. Sends are
// best-effort: the credential service treats delivery failures as non-fatal
// except on the explicit resend path.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"

	"github.com/vibast-solutions/ms-go-accounts/config"
)

type Mailer struct {
	cfg config.MailConfig
}

func New(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, email, name, verificationToken string) error {
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", m.cfg.FrontendURL, url.QueryEscape(verificationToken))

	body, err := renderVerificationEmail(name, verificationURL)
	if err != nil {
		return err
	}
	return m.send(ctx, email, "Verify your email address", body)
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, name, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, url.QueryEscape(resetToken))

	body, err := renderPasswordResetEmail(name, resetURL)
	if err != nil {
		return err
	}
	return m.send(ctx, email, "Reset your password", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: m.cfg.SendTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.cfg.StartTLS {
		if err = client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		m.cfg.FromName, m.cfg.From, to, subject, htmlBody)
	if _, err = w.Write([]byte(msg)); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
