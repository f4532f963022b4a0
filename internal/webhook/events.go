package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prontoplus/internal/calls"
)

// Provider event type strings, as they appear in meta.event_type.
const (
	TypeCallInitiated   = "call.initiated"
	TypeCallAnswered    = "call.answered"
	TypeCallCompleted   = "call.completed"
	TypeRecordingSaved  = "recording.saved"
	TypeTranscriptReady = "transcript.ready"
)

var (
	ErrUnknownEvent     = errors.New("webhook: unknown event type")
	ErrMalformedPayload = errors.New("webhook: malformed payload")
)

// Event is one tagged variant per provider event kind. The dispatcher matches
// exhaustively; loosely-typed field access never leaves this package.
type Event interface {
	EventType() string
}

type CallInitiated struct {
	CallID     string
	From       string
	Direction  calls.CallDirection
	OccurredAt time.Time
}

func (CallInitiated) EventType() string { return TypeCallInitiated }

type CallAnswered struct {
	CallID     string
	OccurredAt time.Time
}

func (CallAnswered) EventType() string { return TypeCallAnswered }

type CallCompleted struct {
	CallID          string
	From            string
	Status          calls.CallStatus
	DurationSeconds int
	OccurredAt      time.Time

	// AI-assistant analysis, present when the provider ran it in-call.
	Transcript string
	Sentiment  *float64
	Topics     []string
}

func (CallCompleted) EventType() string { return TypeCallCompleted }

type RecordingSaved struct {
	CallID       string
	RecordingURL string
}

func (RecordingSaved) EventType() string { return TypeRecordingSaved }

type TranscriptReady struct {
	CallID        string
	TranscriptURL string
	Text          string
}

func (TranscriptReady) EventType() string { return TypeTranscriptReady }

type envelope struct {
	Meta struct {
		EventType string `json:"event_type"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a raw webhook body into its typed variant.
// Unknown event types return ErrUnknownEvent; callers log and ignore them.
func ParseEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Meta.EventType == "" {
		return nil, fmt.Errorf("%w: missing meta.event_type", ErrMalformedPayload)
	}

	switch env.Meta.EventType {
	case TypeCallInitiated:
		var d struct {
			CallID     string    `json:"call_id"`
			From       string    `json:"from"`
			Direction  string    `json:"direction"`
			OccurredAt time.Time `json:"occurred_at"`
		}
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		dir := calls.CallDirection(d.Direction)
		if dir != calls.DirectionOutbound {
			dir = calls.DirectionInbound
		}
		return CallInitiated{CallID: d.CallID, From: d.From, Direction: dir, OccurredAt: d.OccurredAt}, nil

	case TypeCallAnswered:
		var d struct {
			CallID     string    `json:"call_id"`
			OccurredAt time.Time `json:"occurred_at"`
		}
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		return CallAnswered{CallID: d.CallID, OccurredAt: d.OccurredAt}, nil

	case TypeCallCompleted:
		var d struct {
			CallID          string    `json:"call_id"`
			From            string    `json:"from"`
			Status          string    `json:"status"`
			DurationSeconds int       `json:"duration_seconds"`
			OccurredAt      time.Time `json:"occurred_at"`
			Transcript      string    `json:"transcript"`
			Sentiment       *float64  `json:"sentiment_score"`
			Topics          []string  `json:"topics"`
		}
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		status := calls.CallStatus(d.Status)
		if !calls.IsValidStatus(status) {
			status = calls.CallStatusCompleted
		}
		return CallCompleted{
			CallID:          d.CallID,
			From:            d.From,
			Status:          status,
			DurationSeconds: d.DurationSeconds,
			OccurredAt:      d.OccurredAt,
			Transcript:      d.Transcript,
			Sentiment:       d.Sentiment,
			Topics:          d.Topics,
		}, nil

	case TypeRecordingSaved:
		var d struct {
			CallID       string `json:"call_id"`
			RecordingURL string `json:"recording_url"`
		}
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		return RecordingSaved{CallID: d.CallID, RecordingURL: d.RecordingURL}, nil

	case TypeTranscriptReady:
		var d struct {
			CallID        string `json:"call_id"`
			TranscriptURL string `json:"transcript_url"`
			Text          string `json:"transcript_text"`
		}
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		return TranscriptReady{CallID: d.CallID, TranscriptURL: d.TranscriptURL, Text: d.Text}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Meta.EventType)
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
