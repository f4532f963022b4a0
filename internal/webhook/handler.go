package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"prontoplus/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	headerSignature    = "telnyx-signature"
	headerSignatureAlt = "x-telnyx-signature"
)

// Handler is the inbound webhook endpoint.
//
// The provider only needs the 200 acknowledgment, so the response is written
// before processing; everything downstream runs fire-and-forget on a detached
// context. Signature failure is the single pre-ack rejection.
type Handler struct {
	Verifier   *Verifier
	Dispatcher *Dispatcher

	// ProcessTimeout bounds each deferred event's handling.
	ProcessTimeout time.Duration
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h Handler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, ackResponse{Success: false, Message: "unreadable body"})
		return
	}

	sig := c.GetHeader(headerSignature)
	if sig == "" {
		sig = c.GetHeader(headerSignatureAlt)
	}
	if !h.Verifier.Verify(body, sig) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ackResponse{Success: false, Message: "invalid signature"})
		return
	}

	log := logger.FromGin(c)

	ev, err := ParseEvent(body)
	if err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			log.Info("webhook event ignored", "err", err)
			c.JSON(http.StatusOK, ackResponse{Success: true, Message: "event ignored"})
			return
		}
		log.Warn("webhook payload malformed", "err", err)
		c.JSON(http.StatusOK, ackResponse{Success: false, Message: "malformed payload"})
		return
	}

	c.JSON(http.StatusOK, ackResponse{Success: true, Message: "event received"})

	timeout := h.ProcessTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Detach from the request context: the response is already on the wire and
	// the request context dies with it.
	ctx := logger.With(context.Background(), log)
	go func() {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		h.Dispatcher.Dispatch(pctx, ev)
	}()
}
