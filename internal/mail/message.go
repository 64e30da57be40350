package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SenderName is the display name on every relayed message.
const SenderName = "Portfolio Contact"

// DefaultSender is used when no SMTP user is configured.
const DefaultSender = "no-reply@example.com"

var htmlBody = template.Must(template.New("contact").Parse(`
<div style="font-family:Arial,Helvetica,sans-serif;line-height:1.6;color:#111">
  <h2 style="margin:0 0 12px">New Portfolio Message</h2>
  <p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <p><strong>Message:</strong></p>
  <div style="white-space:pre-wrap;background:#f7f7f7;border:1px solid #eee;border-radius:8px;padding:12px">{{.Message}}</div>
</div>
`))

var headerSanitizer = strings.NewReplacer("\r", "", "\n", " ")

// Message is a composed mail ready for a transport.
type Message struct {
	ID      string
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
	Date    time.Time
}

// Compose builds the notification for c. sender is the envelope address of
// the site (empty means DefaultSender), host names the Message-ID domain.
func Compose(c Contact, sender, to, host string, now time.Time) (*Message, error) {
	if sender == "" {
		sender = DefaultSender
	}
	if host == "" {
		host = "localhost"
	}

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, c); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	return &Message{
		ID:      fmt.Sprintf("<%s@%s>", uuid.NewString(), host),
		From:    fmt.Sprintf("%s <%s>", SenderName, sender),
		To:      to,
		ReplyTo: c.Email,
		Subject: fmt.Sprintf("New message from %s: %s", c.Name, c.Subject),
		Text:    fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s", c.Name, c.Email, c.Subject, c.Message),
		HTML:    html.String(),
		Date:    now,
	}, nil
}

// Bytes renders m as a multipart/alternative RFC 5322 message.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ key, value string }{
		{"From", m.From},
		{"To", m.To},
		{"Reply-To", m.ReplyTo},
		{"Subject", mime.QEncoding.Encode("utf-8", m.Subject)},
		{"Date", m.Date.Format(time.RFC1123Z)},
		{"Message-ID", m.ID},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	var head strings.Builder
	for _, h := range headers {
		if h.value == "" {
			continue
		}
		fmt.Fprintf(&head, "%s: %s\r\n", h.key, headerSanitizer.Replace(h.value))
	}
	head.WriteString("\r\n")

	var body bytes.Buffer
	body.WriteString(head.String())

	for _, part := range []struct{ ctype, content string }{
		{"text/plain; charset=utf-8", m.Text},
		{"text/html; charset=utf-8", m.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	body.Write(buf.Bytes())
	return body.Bytes(), nil
}
