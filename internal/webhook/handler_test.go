package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newHandlerRouter(secret string, d *Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := Handler{Verifier: NewVerifier(secret), Dispatcher: d, ProcessTimeout: 5 * time.Second}
	r.POST("/webhooks/telnyx", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/telnyx", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("telnyx-signature", sig)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_AcksAndProcessesAsync(t *testing.T) {
	f := newFixture(t, nil)
	r := newHandlerRouter("", f.dispatcher)

	body := []byte(`{"meta":{"event_type":"call.initiated"},"data":{"call_id":"pc-1","from":"+1555"}}`)
	w := postWebhook(r, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ack ackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil || !ack.Success {
		t.Fatalf("expected success ack, got %s", w.Body.String())
	}

	// Processing is fire-and-forget; poll for the row.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := f.calls.GetByProviderID(context.Background(), "pc-1"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("call row never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandle_RejectsBadSignature(t *testing.T) {
	f := newFixture(t, nil)
	r := newHandlerRouter("topsecret", f.dispatcher)

	body := []byte(`{"meta":{"event_type":"call.initiated"},"data":{"call_id":"pc-1"}}`)
	w := postWebhook(r, body, "sha256=deadbeef")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandle_AcceptsSignedPayload(t *testing.T) {
	f := newFixture(t, nil)
	r := newHandlerRouter("topsecret", f.dispatcher)

	body := []byte(`{"meta":{"event_type":"call.initiated"},"data":{"call_id":"pc-1"}}`)
	w := postWebhook(r, body, "sha256="+sign("topsecret", body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandle_UnknownEventStillAcks(t *testing.T) {
	f := newFixture(t, nil)
	r := newHandlerRouter("", f.dispatcher)

	w := postWebhook(r, []byte(`{"meta":{"event_type":"call.bridged"},"data":{}}`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ack ackResponse
	_ = json.Unmarshal(w.Body.Bytes(), &ack)
	if !ack.Success || ack.Message != "event ignored" {
		t.Fatalf("expected ignored ack, got %s", w.Body.String())
	}
}

func TestHandle_MalformedPayloadStillAcks(t *testing.T) {
	f := newFixture(t, nil)
	r := newHandlerRouter("", f.dispatcher)

	w := postWebhook(r, []byte(`not json`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ack ackResponse
	_ = json.Unmarshal(w.Body.Bytes(), &ack)
	if ack.Success {
		t.Fatalf("expected success=false for malformed payload")
	}
}
