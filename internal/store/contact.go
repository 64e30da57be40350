package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Contact attempt outcomes.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// ContactAttempt is one row of the contact log. Submission content is not
// stored here; only the outcome.
type ContactAttempt struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"message_id,omitempty"`
	HashedIP  string    `json:"hashed_ip"`
	Transport string    `json:"transport"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LogContact appends an attempt to the contact log.
func (s *Store) LogContact(ctx context.Context, a ContactAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_log (message_id, hashed_ip, transport, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.MessageID, a.HashedIP, a.Transport, a.Status, a.Error, a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("log contact: %w", err)
	}
	return nil
}

// ContactLog returns the newest attempts first.
func (s *Store) ContactLog(ctx context.Context, limit int) ([]ContactAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(message_id, ''), COALESCE(hashed_ip, ''), transport, status,
			COALESCE(error, ''), created_at
		FROM contact_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query contact log: %w", err)
	}
	defer rows.Close()

	var out []ContactAttempt
	for rows.Next() {
		var a ContactAttempt
		var ts int64
		if err := rows.Scan(&a.ID, &a.MessageID, &a.HashedIP, &a.Transport, &a.Status, &a.Error, &ts); err != nil {
			return nil, fmt.Errorf("scan contact log: %w", err)
		}
		a.CreatedAt = time.Unix(ts, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// OutboxMessage is a captured message served at its preview URL.
type OutboxMessage struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	MessageID string    `json:"message_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Subject   string    `json:"subject"`
	Text      string    `json:"-"`
	HTML      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveOutbox stores m and returns its row id.
func (s *Store) SaveOutbox(ctx context.Context, m *OutboxMessage) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO outbox (token, message_id, from_addr, to_addr, reply_to, subject, text_body, html_body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Token, m.MessageID, m.From, m.To, m.ReplyTo, m.Subject, m.Text, m.HTML, m.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("save outbox message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save outbox message: %w", err)
	}
	m.ID = id
	return id, nil
}

// OutboxByToken returns the outbox message with the given preview token.
func (s *Store) OutboxByToken(ctx context.Context, token string) (*OutboxMessage, error) {
	var m OutboxMessage
	var ts int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, token, message_id, from_addr, to_addr, COALESCE(reply_to, ''), subject,
			text_body, html_body, created_at
		FROM outbox WHERE token = ?`, token).
		Scan(&m.ID, &m.Token, &m.MessageID, &m.From, &m.To, &m.ReplyTo, &m.Subject, &m.Text, &m.HTML, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load outbox message: %w", err)
	}
	m.CreatedAt = time.Unix(ts, 0).UTC()
	return &m, nil
}

// DeleteOutbox removes the message with the given preview token.
func (s *Store) DeleteOutbox(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete outbox message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete outbox message: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
