package handlers

import (
	"context"
	"net/http"
	"time"

	"social_gateway/internal/client"
	"social_gateway/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxRequestID = "requestId"

// requestLogger tags every request with an id (reusing the caller's
// X-Request-ID when present) and writes one access log line.
func (h *Handler) requestLogger(c *gin.Context) {
	rid := c.GetHeader(client.HeaderRequestID)
	if rid == "" {
		rid = uuid.NewString()
		c.Request.Header.Set(client.HeaderRequestID, rid)
	}
	c.Set(ctxRequestID, rid)
	c.Header(client.HeaderRequestID, rid)

	start := time.Now()
	c.Next()

	if h.log != nil {
		h.log.Infow("http_request",
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// requireSession sends visitors without a token cookie to the login page.
// Whether the token is still valid is for the backend to decide.
func (h *Handler) requireSession(c *gin.Context) {
	if _, ok := session.NewCookieStore(c, h.cookieSecure).Get(); !ok {
		c.Redirect(http.StatusSeeOther, client.LoginPath)
		c.Abort()
		return
	}
	c.Next()
}

// requestContext carries the request id into outbound calls.
func requestContext(c *gin.Context) context.Context {
	return client.ContextWithRequestID(c.Request.Context(), c.GetString(ctxRequestID))
}
