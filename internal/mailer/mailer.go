package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"email-dispatch-go/internal/config"
)

// Message is a fully rendered outbound email.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Receipt is the transport's confirmation of acceptance.
type Receipt struct {
	MessageID string
}

// Mailer wraps the outbound SMTP transport. It owns the dialer and the
// verification state; Submit performs exactly one delivery attempt per
// call and never retries internally.
type Mailer struct {
	dialer        *gomail.Dialer
	fromEmail     string
	fromName      string
	submitTimeout time.Duration
	verified      atomic.Bool
}

// NewMailer creates a new mailer from SMTP configuration
func NewMailer(cfg *config.SMTPConfig) *Mailer {
	logrus.Infof("Initializing SMTP mailer for host %s:%d, user %s", cfg.Host, cfg.Port, cfg.User)
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		logrus.Warn("InsecureSkipVerify is enabled for the SMTP TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Mailer{
		dialer:        d,
		fromEmail:     cfg.FromEmail,
		fromName:      cfg.FromName,
		submitTimeout: timeout,
	}
}

// Verify dials the SMTP server once to confirm the session can be
// established. A failure leaves the mailer configured but unverified;
// Submit is still attempted afterwards and will surface the real error.
func (m *Mailer) Verify() error {
	sc, err := m.dialer.Dial()
	if err != nil {
		m.verified.Store(false)
		return fmt.Errorf("smtp verification failed: %w", err)
	}
	if cerr := sc.Close(); cerr != nil {
		logrus.Warnf("Failed to close SMTP verification session: %v", cerr)
	}
	m.verified.Store(true)
	logrus.Infof("SMTP transport verified for %s:%d", m.dialer.Host, m.dialer.Port)
	return nil
}

// Submit forwards one rendered message to the SMTP transport. The attempt
// is bounded by the configured submit timeout; a timeout follows the same
// failure path as any other transport error.
func (m *Mailer) Submit(ctx context.Context, msg *Message) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, m.submitTimeout)
	defer cancel()

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), m.dialer.Host)

	out := gomail.NewMessage()
	out.SetAddressHeader("From", m.fromEmail, m.fromName)
	if msg.ToName != "" {
		out.SetAddressHeader("To", msg.ToEmail, msg.ToName)
	} else {
		out.SetHeader("To", msg.ToEmail)
	}
	out.SetHeader("Subject", msg.Subject)
	out.SetHeader("Message-ID", messageID)
	out.SetBody("text/plain", msg.TextBody)
	out.AddAlternative("text/html", msg.HTMLBody)

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.dialer.DialAndSend(out)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("smtp submission failed: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("smtp submission timed out: %w", ctx.Err())
	}

	m.verified.Store(true)
	return &Receipt{MessageID: messageID}, nil
}

// Configured reports whether the mailer has a transport host to talk to.
func (m *Mailer) Configured() bool {
	return m.dialer != nil && m.dialer.Host != ""
}

// Verified reports whether the last session attempt succeeded.
func (m *Mailer) Verified() bool {
	return m.verified.Load()
}

// Host returns the SMTP host
func (m *Mailer) Host() string {
	return m.dialer.Host
}

// Port returns the SMTP port
func (m *Mailer) Port() int {
	return m.dialer.Port
}
