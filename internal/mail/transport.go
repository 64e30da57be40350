package mail

import "context"

// Receipt describes an accepted message.
type Receipt struct {
	MessageID  string
	PreviewURL string
}

// Transport delivers composed messages.
type Transport interface {
	// Name identifies the transport in logs and the contact log.
	Name() string
	// Verify checks the transport can accept mail right now.
	Verify(ctx context.Context) error
	// Send delivers m once.
	Send(ctx context.Context, m *Message) (Receipt, error)
}
