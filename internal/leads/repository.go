package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("leads: not found")

// NOTE: This repository assumes the following table exists:
//
// CREATE TABLE leads (
//   id                   UUID PRIMARY KEY,
//   call_id              UUID NOT NULL UNIQUE,
//   phone                TEXT NOT NULL,
//   score                INT NOT NULL,
//   quality              TEXT NOT NULL,
//   sentiment            DOUBLE PRECISION,
//   topics               TEXT NOT NULL DEFAULT '[]',
//   mentioned_pricing    BOOLEAN NOT NULL DEFAULT false,
//   mentioned_insurance  BOOLEAN NOT NULL DEFAULT false,
//   mentioned_scheduling BOOLEAN NOT NULL DEFAULT false,
//   notes                TEXT NOT NULL DEFAULT '',
//   call_count           INT NOT NULL DEFAULT 1,
//   captured_at          TIMESTAMPTZ NOT NULL,
//   follow_up_at         TIMESTAMPTZ,
//   tier_overridden_at   TIMESTAMPTZ,
//   created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
//   updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
// );
// CREATE INDEX leads_phone_captured_at_idx ON leads (phone, captured_at DESC);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const leadColumns = `id, call_id, phone, score, quality, sentiment, topics,
mentioned_pricing, mentioned_insurance, mentioned_scheduling, notes, call_count,
captured_at, follow_up_at, tier_overridden_at, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (Lead, error) {
	var l Lead
	var sentiment sql.NullFloat64
	var topics string
	var followUpAt, overriddenAt sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.CallID,
		&l.Phone,
		&l.Score,
		&l.Quality,
		&sentiment,
		&topics,
		&l.MentionedPricing,
		&l.MentionedInsurance,
		&l.MentionedScheduling,
		&l.Notes,
		&l.CallCount,
		&l.CapturedAt,
		&followUpAt,
		&overriddenAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	if sentiment.Valid {
		l.Sentiment = &sentiment.Float64
	}
	if followUpAt.Valid {
		l.FollowUpAt = &followUpAt.Time
	}
	if overriddenAt.Valid {
		l.TierOverriddenAt = &overriddenAt.Time
	}
	if topics != "" && topics != "[]" {
		// Topics are stored as a JSON array; a decode failure leaves them empty.
		_ = json.Unmarshal([]byte(topics), &l.Topics)
	}
	return l, nil
}

func topicsJSON(topics []string) string {
	if len(topics) == 0 {
		return "[]"
	}
	b, err := json.Marshal(topics)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *PostgresRepo) Insert(ctx context.Context, l Lead) (Lead, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	q := `
INSERT INTO leads (id, call_id, phone, score, quality, sentiment, topics,
	mentioned_pricing, mentioned_insurance, mentioned_scheduling, notes, call_count,
	captured_at, follow_up_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
RETURNING ` + leadColumns
	row := r.db.QueryRowContext(ctx, q,
		l.ID, l.CallID, l.Phone, l.Score, l.Quality, nullableFloat(l.Sentiment), topicsJSON(l.Topics),
		l.MentionedPricing, l.MentionedInsurance, l.MentionedScheduling, l.Notes, l.CallCount,
		l.CapturedAt, nullableTime(l.FollowUpAt),
	)
	return scanLead(row)
}

func (r *PostgresRepo) Update(ctx context.Context, l Lead) (Lead, error) {
	q := `
UPDATE leads
SET score = $2, quality = $3, sentiment = $4, topics = $5,
	mentioned_pricing = $6, mentioned_insurance = $7, mentioned_scheduling = $8,
	notes = $9, call_count = $10, captured_at = $11, follow_up_at = $12,
	tier_overridden_at = $13, updated_at = now()
WHERE id = $1
RETURNING ` + leadColumns
	row := r.db.QueryRowContext(ctx, q,
		l.ID, l.Score, l.Quality, nullableFloat(l.Sentiment), topicsJSON(l.Topics),
		l.MentionedPricing, l.MentionedInsurance, l.MentionedScheduling,
		l.Notes, l.CallCount, l.CapturedAt, nullableTime(l.FollowUpAt),
		nullableTime(l.TierOverriddenAt),
	)
	return scanLead(row)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByCallID(ctx context.Context, callID string) (Lead, bool, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE call_id = $1`
	l, err := scanLead(r.db.QueryRowContext(ctx, q, callID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Lead{}, false, nil
		}
		return Lead{}, false, err
	}
	return l, true, nil
}

func (r *PostgresRepo) FindMostRecentByPhoneSince(ctx context.Context, phone string, since time.Time) (Lead, bool, error) {
	q := `
SELECT ` + leadColumns + `
FROM leads
WHERE phone = $1 AND captured_at >= $2
ORDER BY captured_at DESC
LIMIT 1
`
	l, err := scanLead(r.db.QueryRowContext(ctx, q, phone, since))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Lead{}, false, nil
		}
		return Lead{}, false, err
	}
	return l, true, nil
}

func (r *PostgresRepo) List(ctx context.Context, from, to time.Time) ([]Lead, error) {
	q := `
SELECT ` + leadColumns + `
FROM leads
WHERE ($1::timestamptz IS NULL OR captured_at >= $1)
  AND ($2::timestamptz IS NULL OR captured_at < $2)
ORDER BY captured_at DESC
`
	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}
	rows, err := r.db.QueryContext(ctx, q, fromArg, toArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
