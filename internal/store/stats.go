package store

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes the database for the admin dashboard.
type Stats struct {
	TotalVisitors    int64            `json:"total_visitors"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	VisitorsToday    int64            `json:"visitors_today"`
	VisitorsThisWeek int64            `json:"visitors_this_week"`
	ContactSent      int64            `json:"contact_sent"`
	ContactFailed    int64            `json:"contact_failed"`
	ContactRejected  int64            `json:"contact_rejected"`
	OutboxMessages   int64            `json:"outbox_messages"`
	RecentVisitors   []Visit          `json:"recent_visitors"`
	RecentContacts   []ContactAttempt `json:"recent_contacts"`
}

// Stats computes dashboard figures relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, "SELECT COUNT(*) FROM visitors", nil},
		{&stats.UniqueVisitors, "SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil},
		{&stats.VisitorsToday, "SELECT COUNT(*) FROM visitors WHERE visited_at >= ?", []any{startOfDay.Unix()}},
		{&stats.VisitorsThisWeek, "SELECT COUNT(*) FROM visitors WHERE visited_at >= ?", []any{weekAgo.Unix()}},
		{&stats.ContactSent, "SELECT COUNT(*) FROM contact_log WHERE status = ?", []any{StatusSent}},
		{&stats.ContactFailed, "SELECT COUNT(*) FROM contact_log WHERE status = ?", []any{StatusFailed}},
		{&stats.ContactRejected, "SELECT COUNT(*) FROM contact_log WHERE status = ?", []any{StatusRejected}},
		{&stats.OutboxMessages, "SELECT COUNT(*) FROM outbox", nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats %q: %w", c.query, err)
		}
	}

	var err error
	if stats.RecentVisitors, err = s.RecentVisits(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentContacts, err = s.ContactLog(ctx, 20); err != nil {
		return nil, err
	}
	return stats, nil
}
