package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"prontoplus/internal/analytics"
	"prontoplus/internal/auth"
	"prontoplus/internal/calls"
	"prontoplus/internal/leads"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Calls     calls.Repository
	Leads     leads.Repository
	LeadSvc   *leads.Service
	Analytics *analytics.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

func (h Handlers) ListCalls(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}

	f := calls.ListFilter{
		Status:    calls.CallStatus(c.Query("status")),
		Direction: calls.CallDirection(c.Query("direction")),
		Page:      intQuery(c, "page", 1),
		PerPage:   intQuery(c, "per_page", 20),
	}
	if f.Status != "" && !calls.IsValidStatus(f.Status) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	var ok bool
	if f.From, ok = timeQuery(c, "from"); !ok {
		return
	}
	if f.To, ok = timeQuery(c, "to"); !ok {
		return
	}

	rows, total, err := h.Calls.List(c.Request.Context(), f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call list failed"})
		return
	}
	if rows == nil {
		rows = []calls.Call{}
	}
	c.JSON(http.StatusOK, gin.H{
		"calls":    rows,
		"total":    total,
		"page":     f.Page,
		"per_page": f.PerPage,
	})
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	id := c.Param("call_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	call, err := h.Calls.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}

	out := gin.H{"call": call}
	if h.Leads != nil {
		if lead, ok, err := h.Leads.GetByCallID(c.Request.Context(), call.ID); err == nil && ok {
			out["lead"] = lead
		}
	}
	c.JSON(http.StatusOK, out)
}

// --- Analytics ---

func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	r, ok := rangeQuery(c)
	if !ok {
		return
	}
	sum, err := h.Analytics.CallsSummary(c.Request.Context(), r)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h Handlers) LeadInterest(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	r, ok := rangeQuery(c)
	if !ok {
		return
	}
	out, err := h.Analytics.LeadInterest(c.Request.Context(), r)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead interest failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Leads ---

type setTierRequest struct {
	Tier string `json:"tier"`
}

// SetLeadTier manually overrides a lead's quality tier.
// RBAC: owner or agent (or super_admin).
func (h Handlers) SetLeadTier(c *gin.Context) {
	if h.LeadSvc == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "leads not configured"})
		return
	}
	id := c.Param("lead_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "lead_id required"})
		return
	}
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	lead, err := h.LeadSvc.SetTier(c.Request.Context(), id, leads.Quality(req.Tier))
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrInvalidTier):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tier must be HOT, WARM, COLD or UNQUALIFIED"})
		case errors.Is(err, leads.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tier update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, lead)
}

// --- helpers ---

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func timeQuery(c *gin.Context, key string) (time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": key + " must be RFC3339"})
		return time.Time{}, false
	}
	return t, true
}

// rangeQuery parses from/to with a default trailing 30-day window.
func rangeQuery(c *gin.Context) (analytics.TimeRange, bool) {
	from, ok := timeQuery(c, "from")
	if !ok {
		return analytics.TimeRange{}, false
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return analytics.TimeRange{}, false
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return analytics.TimeRange{From: from, To: to}, true
}
