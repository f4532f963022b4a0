package calls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("calls: not found")

// Repository is the persistence contract for calls.
//
// Upsert semantics exist because provider events race: a recording.saved can
// arrive before the call.initiated row was written.
type Repository interface {
	// CreateIfAbsent inserts a call keyed by provider call id.
	// If a row already exists it is returned unchanged.
	CreateIfAbsent(ctx context.Context, c Call) (Call, error)

	GetByID(ctx context.Context, id string) (Call, error)
	GetByProviderID(ctx context.Context, providerCallID string) (Call, error)

	MarkAnswered(ctx context.Context, providerCallID string, at time.Time) error

	// Complete finalizes status/duration and returns the updated row.
	Complete(ctx context.Context, providerCallID string, status CallStatus, durationSeconds int, endedAt time.Time) (Call, error)

	// AttachRecording/AttachTranscript patch side-channel fields, creating a
	// placeholder row when the lifecycle events have not landed yet.
	AttachRecording(ctx context.Context, providerCallID, recordingURL string) error
	AttachTranscript(ctx context.Context, providerCallID, transcriptURL, text string) error

	List(ctx context.Context, f ListFilter) ([]Call, int, error)
}

// NOTE: This repository assumes the following table exists:
//
// CREATE TABLE calls (
//   id               UUID PRIMARY KEY,
//   provider_call_id TEXT NOT NULL UNIQUE,
//   phone            TEXT NOT NULL DEFAULT '',
//   direction        TEXT NOT NULL DEFAULT 'inbound',
//   status           TEXT NOT NULL,
//   duration         INT NOT NULL DEFAULT 0,
//   recording_url    TEXT NOT NULL DEFAULT '',
//   transcript_url   TEXT NOT NULL DEFAULT '',
//   transcript_text  TEXT NOT NULL DEFAULT '',
//   started_at       TIMESTAMPTZ,
//   answered_at      TIMESTAMPTZ,
//   ended_at         TIMESTAMPTZ,
//   metadata         TEXT NOT NULL DEFAULT '',
//   created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
//   updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
// );

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callColumns = `id, provider_call_id, phone, direction, status, duration,
recording_url, transcript_url, transcript_text, started_at, answered_at, ended_at,
metadata, created_at, updated_at`

func scanCall(row interface{ Scan(...any) error }) (Call, error) {
	var c Call
	var startedAt, answeredAt, endedAt sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.ProviderCallID,
		&c.Phone,
		&c.Direction,
		&c.Status,
		&c.DurationSeconds,
		&c.RecordingURL,
		&c.TranscriptURL,
		&c.TranscriptText,
		&startedAt,
		&answeredAt,
		&endedAt,
		&c.Metadata,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		return Call{}, err
	}
	if startedAt.Valid {
		c.StartedAt = &startedAt.Time
	}
	if answeredAt.Valid {
		c.AnsweredAt = &answeredAt.Time
	}
	if endedAt.Valid {
		c.EndedAt = &endedAt.Time
	}
	return c, nil
}

func (r *PostgresRepo) CreateIfAbsent(ctx context.Context, c Call) (Call, error) {
	if c.ProviderCallID == "" {
		return Call{}, errors.New("calls: provider_call_id is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = CallStatusInitiated
	}
	q := `
INSERT INTO calls (id, provider_call_id, phone, direction, status, duration, metadata, started_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (provider_call_id) DO UPDATE SET provider_call_id = EXCLUDED.provider_call_id
RETURNING ` + callColumns
	var startedAt any
	if c.StartedAt != nil {
		startedAt = *c.StartedAt
	}
	row := r.db.QueryRowContext(ctx, q,
		c.ID, c.ProviderCallID, c.Phone, c.Direction, c.Status, c.DurationSeconds, c.Metadata, startedAt,
	)
	return scanCall(row)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Call, error) {
	q := `SELECT ` + callColumns + ` FROM calls WHERE id = $1`
	return scanCall(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByProviderID(ctx context.Context, providerCallID string) (Call, error) {
	q := `SELECT ` + callColumns + ` FROM calls WHERE provider_call_id = $1`
	return scanCall(r.db.QueryRowContext(ctx, q, providerCallID))
}

func (r *PostgresRepo) MarkAnswered(ctx context.Context, providerCallID string, at time.Time) error {
	const q = `
UPDATE calls
SET status = $2, answered_at = $3, updated_at = now()
WHERE provider_call_id = $1
`
	res, err := r.db.ExecContext(ctx, q, providerCallID, CallStatusAnswered, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Complete(ctx context.Context, providerCallID string, status CallStatus, durationSeconds int, endedAt time.Time) (Call, error) {
	if !IsValidStatus(status) {
		return Call{}, fmt.Errorf("calls: invalid status %q", status)
	}
	q := `
UPDATE calls
SET status = $2, duration = $3, ended_at = $4, updated_at = now()
WHERE provider_call_id = $1
RETURNING ` + callColumns
	return scanCall(r.db.QueryRowContext(ctx, q, providerCallID, status, durationSeconds, endedAt))
}

func (r *PostgresRepo) AttachRecording(ctx context.Context, providerCallID, recordingURL string) error {
	const q = `
INSERT INTO calls (id, provider_call_id, status, recording_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (provider_call_id) DO UPDATE SET recording_url = EXCLUDED.recording_url, updated_at = now()
`
	_, err := r.db.ExecContext(ctx, q, uuid.NewString(), providerCallID, CallStatusInitiated, recordingURL)
	return err
}

func (r *PostgresRepo) AttachTranscript(ctx context.Context, providerCallID, transcriptURL, text string) error {
	const q = `
INSERT INTO calls (id, provider_call_id, status, transcript_url, transcript_text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (provider_call_id) DO UPDATE SET transcript_url = EXCLUDED.transcript_url, transcript_text = EXCLUDED.transcript_text, updated_at = now()
`
	_, err := r.db.ExecContext(ctx, q, uuid.NewString(), providerCallID, CallStatusInitiated, transcriptURL, text)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Call, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Direction != "" {
		where = append(where, "direction = "+arg(f.Direction))
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < "+arg(f.To))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM calls WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	q := `SELECT ` + callColumns + ` FROM calls WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(perPage) + ` OFFSET ` + arg((page-1)*perPage)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func normalizePage(page, perPage int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
