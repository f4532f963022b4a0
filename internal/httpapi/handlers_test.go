package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prontoplus/internal/analytics"
	"prontoplus/internal/calls"
	"prontoplus/internal/leads"

	"github.com/gin-gonic/gin"
)

func newFixture(t *testing.T) (Handlers, *calls.MemoryRepo, *leads.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	callRepo := calls.NewMemoryRepo()
	leadRepo := leads.NewMemoryRepo()
	h := Handlers{
		Calls:     callRepo,
		Leads:     leadRepo,
		LeadSvc:   leads.NewService(leadRepo),
		Analytics: analytics.NewService(analytics.DomainRepo{Calls: callRepo, Leads: leadRepo}),
	}
	return h, callRepo, leadRepo
}

func newRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.GET("/calls", h.ListCalls)
	r.GET("/calls/:call_id", h.GetCall)
	r.GET("/analytics/summary", h.CallsSummary)
	r.GET("/analytics/leads", h.LeadInterest)
	r.PATCH("/leads/:lead_id/tier", h.SetLeadTier)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
		}
	}
	return w, out
}

func TestListCallsFiltersByStatus(t *testing.T) {
	h, callRepo, _ := newFixture(t)
	r := newRouter(h)

	ctx := context.Background()
	for _, c := range []calls.Call{
		{ProviderCallID: "p1", Phone: "+15550001", Status: calls.CallStatusCompleted},
		{ProviderCallID: "p2", Phone: "+15550002", Status: calls.CallStatusCompleted},
		{ProviderCallID: "p3", Phone: "+15550003", Status: calls.CallStatusFailed},
	} {
		if _, err := callRepo.CreateIfAbsent(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	w, out := doJSON(t, r, http.MethodGet, "/calls?status=completed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := out["total"].(float64); got != 2 {
		t.Fatalf("total = %v, want 2", got)
	}
	rows := out["calls"].([]any)
	if len(rows) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(rows))
	}
}

func TestListCallsRejectsInvalidStatus(t *testing.T) {
	h, _, _ := newFixture(t)
	r := newRouter(h)

	w, _ := doJSON(t, r, http.MethodGet, "/calls?status=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListCallsRejectsBadTimestamp(t *testing.T) {
	h, _, _ := newFixture(t)
	r := newRouter(h)

	w, _ := doJSON(t, r, http.MethodGet, "/calls?from=yesterday", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetCallIncludesLead(t *testing.T) {
	h, callRepo, leadRepo := newFixture(t)
	r := newRouter(h)

	ctx := context.Background()
	call, err := callRepo.CreateIfAbsent(ctx, calls.Call{ProviderCallID: "p1", Phone: "+15550001", Status: calls.CallStatusCompleted})
	if err != nil {
		t.Fatalf("seed call: %v", err)
	}
	if _, err := leadRepo.Insert(ctx, leads.Lead{CallID: call.ID, Phone: "+15550001", Score: 80, Quality: leads.QualityHot, CapturedAt: time.Now().UTC(), CallCount: 1}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	w, out := doJSON(t, r, http.MethodGet, "/calls/"+call.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, ok := out["call"]; !ok {
		t.Fatal("response missing call")
	}
	lead, ok := out["lead"].(map[string]any)
	if !ok {
		t.Fatal("response missing lead")
	}
	if lead["quality"] != "HOT" {
		t.Fatalf("lead quality = %v, want HOT", lead["quality"])
	}
}

func TestGetCallNotFound(t *testing.T) {
	h, _, _ := newFixture(t)
	r := newRouter(h)

	w, _ := doJSON(t, r, http.MethodGet, "/calls/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSetLeadTier(t *testing.T) {
	h, _, leadRepo := newFixture(t)
	r := newRouter(h)

	lead, err := leadRepo.Insert(context.Background(), leads.Lead{CallID: "c1", Phone: "+15550001", Score: 40, Quality: leads.QualityCold, CapturedAt: time.Now().UTC(), CallCount: 1})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	w, out := doJSON(t, r, http.MethodPatch, "/leads/"+lead.ID+"/tier", `{"tier":"HOT"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if out["quality"] != "HOT" {
		t.Fatalf("quality = %v, want HOT", out["quality"])
	}
	if out["tier_overridden_at"] == nil {
		t.Fatal("tier_overridden_at not stamped")
	}
}

func TestSetLeadTierInvalid(t *testing.T) {
	h, _, leadRepo := newFixture(t)
	r := newRouter(h)

	lead, err := leadRepo.Insert(context.Background(), leads.Lead{CallID: "c1", Phone: "+15550001", Quality: leads.QualityCold, CapturedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	w, _ := doJSON(t, r, http.MethodPatch, "/leads/"+lead.ID+"/tier", `{"tier":"LUKEWARM"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSetLeadTierMissingLead(t *testing.T) {
	h, _, _ := newFixture(t)
	r := newRouter(h)

	w, _ := doJSON(t, r, http.MethodPatch, "/leads/missing/tier", `{"tier":"HOT"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCallsSummaryRejectsInvertedRange(t *testing.T) {
	h, _, _ := newFixture(t)
	r := newRouter(h)

	w, _ := doJSON(t, r, http.MethodGet, "/analytics/summary?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLeadInterestDefaultsRange(t *testing.T) {
	h, _, leadRepo := newFixture(t)
	r := newRouter(h)

	if _, err := leadRepo.Insert(context.Background(), leads.Lead{CallID: "c1", Phone: "+15550001", Score: 90, Quality: leads.QualityHot, CapturedAt: time.Now().UTC().Add(-time.Hour), CallCount: 1}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	w, out := doJSON(t, r, http.MethodGet, "/analytics/leads", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := out["hot_leads"].(float64); got != 1 {
		t.Fatalf("hot_leads = %v, want 1", got)
	}
}
