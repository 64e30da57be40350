package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Relay turns contact submissions into delivered messages.
type Relay struct {
	transport Transport
	sender    string
	to        string
	host      string
	now       func() time.Time
	logger    *zap.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithClock overrides the message date source.
func WithClock(now func() time.Time) RelayOption {
	return func(r *Relay) { r.now = now }
}

// WithMessageHost sets the domain used in Message-ID headers.
func WithMessageHost(host string) RelayOption {
	return func(r *Relay) { r.host = host }
}

// NewRelay builds a relay. sender is the site's envelope address and to the
// inbox that receives notifications; an empty to falls back to sender.
func NewRelay(t Transport, sender, to string, logger *zap.Logger, opts ...RelayOption) *Relay {
	if sender == "" {
		sender = DefaultSender
	}
	if to == "" {
		to = sender
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		transport: t,
		sender:    sender,
		to:        to,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Transport returns the transport in use.
func (r *Relay) Transport() Transport { return r.transport }

// Deliver validates c, verifies the transport and sends exactly once.
// Invalid submissions never reach the transport.
func (r *Relay) Deliver(ctx context.Context, c Contact) (Receipt, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return Receipt{}, err
	}

	r.logger.Info("contact request",
		zap.String("name", c.Name),
		zap.String("email", c.Email),
		zap.String("subject", c.Subject),
		zap.Int("len", len(c.Message)),
	)

	msg, err := Compose(c, r.sender, r.to, r.host, r.now())
	if err != nil {
		return Receipt{}, err
	}

	if err := r.transport.Verify(ctx); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrVerify, err)
	}

	receipt, err := r.transport.Send(ctx, msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("send via %s: %w", r.transport.Name(), err)
	}

	fields := []zap.Field{zap.String("message_id", receipt.MessageID), zap.String("transport", r.transport.Name())}
	if receipt.PreviewURL != "" {
		fields = append(fields, zap.String("preview_url", receipt.PreviewURL))
	}
	r.logger.Info("sent message", fields...)
	return receipt, nil
}
