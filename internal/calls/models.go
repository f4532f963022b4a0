package calls

import "time"

// Call represents one inbound/outbound telephony session.
//
// Lifecycle invariant: rows are created on the provider's "initiated" event and
// mutated in place by later events, keyed on ProviderCallID. Rows are never
// deleted by this system; retention is an operational concern.
//
// Recording/transcript fields are populated asynchronously by side-channel
// events that carry no ordering guarantee against completion.

type Call struct {
	ID             string `json:"id" db:"id"`
	ProviderCallID string `json:"provider_call_id" db:"provider_call_id"`

	Phone     string        `json:"phone" db:"phone"`
	Direction CallDirection `json:"direction" db:"direction"`

	Status CallStatus `json:"status" db:"status"`

	// DurationSeconds is the call duration in seconds.
	// Keep as an int for JSON friendliness; store as INT in Postgres.
	DurationSeconds int `json:"duration" db:"duration"`

	RecordingURL   string `json:"recording_url,omitempty" db:"recording_url"`
	TranscriptURL  string `json:"transcript_url,omitempty" db:"transcript_url"`
	TranscriptText string `json:"transcript_text,omitempty" db:"transcript_text"`

	StartedAt  *time.Time `json:"started_at,omitempty" db:"started_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty" db:"answered_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// Metadata is an opaque JSON blob from the provider.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusRinging   CallStatus = "ringing"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
	CallStatusBusy      CallStatus = "busy"
	CallStatusNoAnswer  CallStatus = "no_answer"
)

func IsValidStatus(s CallStatus) bool {
	switch s {
	case CallStatusInitiated, CallStatusRinging, CallStatusAnswered,
		CallStatusCompleted, CallStatusFailed, CallStatusBusy, CallStatusNoAnswer:
		return true
	default:
		return false
	}
}

type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
)

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	Status    CallStatus
	Direction CallDirection
	From      time.Time
	To        time.Time

	// Page is 1-based; PerPage caps at 100 in the repository.
	Page    int
	PerPage int
}
