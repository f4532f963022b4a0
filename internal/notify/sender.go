package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prontoplus/internal/leads"

	"github.com/google/uuid"
)

var ErrNoChannel = errors.New("notify: channel webhook url not configured")

// channelMessage is the JSON posted to the external channel webhook.
type channelMessage struct {
	Text  string `json:"text"`
	Lead  leadSummary `json:"lead"`
	Links actionLinks `json:"links"`
}

type leadSummary struct {
	ID                  string `json:"id"`
	Phone               string `json:"phone"`
	Score               int    `json:"score"`
	Quality             string `json:"quality"`
	MentionedPricing    bool   `json:"mentioned_pricing"`
	MentionedInsurance  bool   `json:"mentioned_insurance"`
	MentionedScheduling bool   `json:"mentioned_scheduling"`
	CallCount           int    `json:"call_count"`
}

type actionLinks struct {
	Lead string `json:"lead"`
	Call string `json:"call"`
}

// Sender posts lead notifications to an external channel webhook and records
// every attempt in the notification log.
type Sender struct {
	webhookURL string
	baseURL    string

	client *http.Client
	repo   Repository
	clock  func() time.Time
}

func NewSender(webhookURL, baseURL string, repo Repository) *Sender {
	return &Sender{
		webhookURL: webhookURL,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		repo:       repo,
		clock:      time.Now,
	}
}

// Send delivers a notification for the lead. The outcome (sent or failed) is
// appended to the log either way; a delivery failure is returned to the caller
// for logging only, since the webhook flow has no retry path.
func (s *Sender) Send(ctx context.Context, lead leads.Lead) error {
	if s.repo == nil {
		return errors.New("notify: repository not configured")
	}
	if s.webhookURL == "" {
		return ErrNoChannel
	}

	msg := channelMessage{
		Text: fmt.Sprintf("%s lead: %s scored %d", lead.Quality, lead.Phone, lead.Score),
		Lead: leadSummary{
			ID:                  lead.ID,
			Phone:               lead.Phone,
			Score:               lead.Score,
			Quality:             string(lead.Quality),
			MentionedPricing:    lead.MentionedPricing,
			MentionedInsurance:  lead.MentionedInsurance,
			MentionedScheduling: lead.MentionedScheduling,
			CallCount:           lead.CallCount,
		},
		Links: actionLinks{
			Lead: s.baseURL + "/leads/" + lead.ID,
			Call: s.baseURL + "/calls/" + lead.CallID,
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	deliverErr := s.post(ctx, body)

	now := s.clock().UTC()
	log := NotificationLog{
		ID:        uuid.NewString(),
		LeadID:    lead.ID,
		Channel:   ChannelWebhook,
		Recipient: s.webhookURL,
		Message:   msg.Text,
		Status:    StatusSent,
		SentAt:    now,
	}
	if deliverErr != nil {
		log.Status = StatusFailed
	} else {
		log.DeliveredAt = &now
	}

	if err := s.repo.Append(ctx, log); err != nil {
		return fmt.Errorf("append notification log: %w", err)
	}
	return deliverErr
}

func (s *Sender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("channel webhook error: %s", resp.Status)
	}
	return nil
}
