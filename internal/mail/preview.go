package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/store"
)

// PreviewPath is the route prefix preview messages are served under.
const PreviewPath = "/preview/"

// Outbox stores captured messages.
type Outbox interface {
	SaveOutbox(ctx context.Context, m *store.OutboxMessage) (int64, error)
	Ping(ctx context.Context) error
}

// PreviewTransport captures messages in the outbox instead of sending them
// and hands back a URL where each can be read. It is used when no SMTP
// server is configured.
type PreviewTransport struct {
	Outbox Outbox
	// BaseURL is prepended to preview links; empty yields relative links.
	BaseURL string
}

func (t *PreviewTransport) Name() string { return "preview" }

func (t *PreviewTransport) Verify(ctx context.Context) error {
	if t.Outbox == nil {
		return ErrNotConfigured
	}
	return t.Outbox.Ping(ctx)
}

func (t *PreviewTransport) Send(ctx context.Context, m *Message) (Receipt, error) {
	if t.Outbox == nil {
		return Receipt{}, ErrNotConfigured
	}
	token := uuid.NewString()
	_, err := t.Outbox.SaveOutbox(ctx, &store.OutboxMessage{
		Token:     token,
		MessageID: m.ID,
		From:      m.From,
		To:        m.To,
		ReplyTo:   m.ReplyTo,
		Subject:   m.Subject,
		Text:      m.Text,
		HTML:      m.HTML,
		CreatedAt: m.Date,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("capture preview: %w", err)
	}
	return Receipt{
		MessageID:  m.ID,
		PreviewURL: strings.TrimRight(t.BaseURL, "/") + PreviewPath + token,
	}, nil
}
