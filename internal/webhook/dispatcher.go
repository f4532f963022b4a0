package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prontoplus/internal/calls"
	"prontoplus/internal/flags"
	"prontoplus/internal/leads"
	"prontoplus/internal/notify"
)

// Dispatcher routes typed events to their handlers.
//
// Error policy (deliberate): the webhook response is sent before any of this
// runs, so there is no caller to surface failures to. Every handler error is
// logged and swallowed. There is no retry and no dead-letter; a crash between
// ack and handler completion loses the event.
type Dispatcher struct {
	Calls  calls.Repository
	Leads  *leads.Service
	Gate   *notify.Gate
	Sender *notify.Sender
	Locker notify.Locker
	Flags  flags.Evaluator
	Log    *slog.Logger
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	log := d.logger().With("event_type", ev.EventType())

	var err error
	switch e := ev.(type) {
	case CallInitiated:
		err = d.handleInitiated(ctx, e)
	case CallAnswered:
		err = d.handleAnswered(ctx, e)
	case CallCompleted:
		err = d.handleCompleted(ctx, e)
	case RecordingSaved:
		err = d.Calls.AttachRecording(ctx, e.CallID, e.RecordingURL)
	case TranscriptReady:
		err = d.Calls.AttachTranscript(ctx, e.CallID, e.TranscriptURL, e.Text)
	default:
		log.Warn("event ignored")
		return
	}

	if err != nil {
		log.Error("event handling failed", "err", err)
		return
	}
	log.Debug("event handled")
}

func (d *Dispatcher) handleInitiated(ctx context.Context, e CallInitiated) error {
	if e.CallID == "" {
		return fmt.Errorf("%w: missing call_id", ErrMalformedPayload)
	}
	started := e.OccurredAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := d.Calls.CreateIfAbsent(ctx, calls.Call{
		ProviderCallID: e.CallID,
		Phone:          e.From,
		Direction:      e.Direction,
		Status:         calls.CallStatusInitiated,
		StartedAt:      &started,
	})
	return err
}

func (d *Dispatcher) handleAnswered(ctx context.Context, e CallAnswered) error {
	if e.CallID == "" {
		return fmt.Errorf("%w: missing call_id", ErrMalformedPayload)
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	err := d.Calls.MarkAnswered(ctx, e.CallID, at)
	if errors.Is(err, calls.ErrNotFound) {
		// Answered raced ahead of initiated; create the row and retry.
		if _, cErr := d.Calls.CreateIfAbsent(ctx, calls.Call{ProviderCallID: e.CallID}); cErr != nil {
			return cErr
		}
		return d.Calls.MarkAnswered(ctx, e.CallID, at)
	}
	return err
}

func (d *Dispatcher) handleCompleted(ctx context.Context, e CallCompleted) error {
	if e.CallID == "" {
		return fmt.Errorf("%w: missing call_id", ErrMalformedPayload)
	}
	endedAt := e.OccurredAt
	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}

	call, err := d.Calls.Complete(ctx, e.CallID, e.Status, e.DurationSeconds, endedAt)
	if errors.Is(err, calls.ErrNotFound) {
		if _, cErr := d.Calls.CreateIfAbsent(ctx, calls.Call{ProviderCallID: e.CallID, Phone: e.From}); cErr != nil {
			return cErr
		}
		call, err = d.Calls.Complete(ctx, e.CallID, e.Status, e.DurationSeconds, endedAt)
	}
	if err != nil {
		return err
	}

	phone := call.Phone
	if phone == "" {
		phone = e.From
	}
	if phone == "" {
		// No caller identity, nothing to score against.
		d.logger().Warn("completed call has no caller id, skipping lead capture", "call_id", call.ID)
		return nil
	}

	// Prefer the analysis carried on the event; fall back to a transcript that
	// arrived earlier via transcript.ready. A transcript arriving after this
	// point only patches the call row and is not re-scored.
	transcript := e.Transcript
	if transcript == "" {
		transcript = call.TranscriptText
	}

	lead, err := d.Leads.Capture(ctx, call.ID, phone, leads.Input{
		DurationSeconds: e.DurationSeconds,
		Transcript:      transcript,
		Sentiment:       e.Sentiment,
		Topics:          e.Topics,
	})
	if err != nil {
		return fmt.Errorf("capture lead: %w", err)
	}

	return d.maybeNotify(ctx, lead)
}

func (d *Dispatcher) maybeNotify(ctx context.Context, lead leads.Lead) error {
	if d.Gate == nil || d.Sender == nil {
		return nil
	}
	if d.Flags != nil && !d.Flags.Bool(ctx, flags.NotificationsEnabled, true) {
		return nil
	}

	if d.Locker != nil {
		ok, err := d.Locker.Acquire(ctx, lead.ID)
		if err != nil {
			return fmt.Errorf("acquire send lock: %w", err)
		}
		if !ok {
			// Another in-flight completion for this lead owns the send.
			return nil
		}
		defer d.Locker.Release(ctx, lead.ID)
	}

	ok, err := d.Gate.ShouldNotify(ctx, lead.ID)
	if err != nil {
		return fmt.Errorf("notification gate: %w", err)
	}
	if !ok {
		d.logger().Debug("notification suppressed", "lead_id", lead.ID)
		return nil
	}

	if err := d.Sender.Send(ctx, lead); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
