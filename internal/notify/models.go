package notify

import "time"

// NotificationLog is an immutable, append-only record of one outbound
// notification attempt.
//
// Invariants:
// - Rows are never updated or deleted.
// - The gate derives cooldown state exclusively from rows with status "sent".

type NotificationLog struct {
	ID     string `json:"id" db:"id"`
	LeadID string `json:"lead_id" db:"lead_id"`

	Channel   string `json:"channel" db:"channel"`
	Recipient string `json:"recipient" db:"recipient"`
	Message   string `json:"message" db:"message"`

	Status DeliveryStatus `json:"status" db:"status"`

	SentAt      time.Time  `json:"sent_at" db:"sent_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
}

type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

const ChannelWebhook = "channel_webhook"
