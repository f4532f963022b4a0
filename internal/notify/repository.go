package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following table exists:
//
// CREATE TABLE notification_logs (
//   id           UUID PRIMARY KEY,
//   lead_id      UUID NOT NULL,
//   channel      TEXT NOT NULL,
//   recipient    TEXT NOT NULL,
//   message      TEXT NOT NULL DEFAULT '',
//   status       TEXT NOT NULL,
//   sent_at      TIMESTAMPTZ NOT NULL,
//   delivered_at TIMESTAMPTZ
// );
// CREATE INDEX notification_logs_lead_sent_idx ON notification_logs (lead_id, sent_at DESC);
//
// The table is INSERT-only; a trigger preventing UPDATE/DELETE is recommended.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, l NotificationLog) error {
	const q = `
INSERT INTO notification_logs (id, lead_id, channel, recipient, message, status, sent_at, delivered_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	var delivered any
	if l.DeliveredAt != nil {
		delivered = *l.DeliveredAt
	}
	_, err := r.db.ExecContext(ctx, q, l.ID, l.LeadID, l.Channel, l.Recipient, l.Message, l.Status, l.SentAt, delivered)
	return err
}

func (r *PostgresRepo) LastSentAt(ctx context.Context, leadID string) (time.Time, bool, error) {
	const q = `
SELECT sent_at
FROM notification_logs
WHERE lead_id = $1 AND status = $2
ORDER BY sent_at DESC
LIMIT 1
`
	var at time.Time
	if err := r.db.QueryRowContext(ctx, q, leadID, StatusSent).Scan(&at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}
