package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

// DefaultSMTPPort is the submission port used when none is configured.
const DefaultSMTPPort = 587

// SMTPTransport sends through an authenticated SMTP server. With Secure set
// the connection is TLS from the start, otherwise STARTTLS is used when the
// server offers it.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool
	Timeout  time.Duration

	// TLSConfig overrides the client TLS settings, for tests.
	TLSConfig *tls.Config
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) addr() string {
	port := t.Port
	if port == 0 {
		port = DefaultSMTPPort
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.TLSConfig != nil {
		return t.TLSConfig.Clone()
	}
	return &tls.Config{ServerName: t.Host, MinVersion: tls.VersionTLS12}
}

// dial opens an authenticated client session.
func (t *SMTPTransport) dial(ctx context.Context) (*smtp.Client, error) {
	if t.Host == "" {
		return nil, ErrNotConfigured
	}
	timeout := t.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}

	var (
		conn net.Conn
		err  error
	)
	if t.Secure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: t.tlsConfig()}).DialContext(ctx, "tcp", t.addr())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", t.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.addr(), err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}
	if !t.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(t.tlsConfig()); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if t.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", t.Username, t.Password, t.Host)); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	return c, nil
}

// Verify connects, authenticates and issues NOOP.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp noop: %w", err)
	}
	return c.Quit()
}

// Send delivers m in a single session.
func (t *SMTPTransport) Send(ctx context.Context, m *Message) (Receipt, error) {
	from, err := envelopeAddress(m.From)
	if err != nil {
		return Receipt{}, fmt.Errorf("sender: %w", err)
	}
	to, err := envelopeAddress(m.To)
	if err != nil {
		return Receipt{}, fmt.Errorf("recipient: %w", err)
	}
	raw, err := m.Bytes()
	if err != nil {
		return Receipt{}, fmt.Errorf("render message: %w", err)
	}

	c, err := t.dial(ctx)
	if err != nil {
		return Receipt{}, err
	}
	defer c.Close()

	if err := c.Mail(from); err != nil {
		return Receipt{}, fmt.Errorf("smtp MAIL: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return Receipt{}, fmt.Errorf("smtp RCPT: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return Receipt{}, fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return Receipt{}, fmt.Errorf("smtp DATA: %w", err)
	}
	if err := w.Close(); err != nil {
		return Receipt{}, fmt.Errorf("smtp DATA: %w", err)
	}
	// accepted once DATA is acknowledged
	_ = c.Quit()
	return Receipt{MessageID: m.ID}, nil
}

func envelopeAddress(s string) (string, error) {
	if s == "" {
		return "", ErrNotConfigured
	}
	a, err := mail.ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Address, nil
}
