package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	healthWriteTimeout = 10 * time.Second
	// a peer that sends nothing (not even a pong) for this long is gone
	peerIdleTimeout = 60 * time.Second
	keepAliveEvery  = peerIdleTimeout * 9 / 10
	inboundLimit    = 4 << 10

	defaultInterval = 5 * time.Second
	maxInterval     = 10 * time.Second
)

// wsEnvelope frames every message on the health stream.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// upgrader accepts same-origin pages and non-browser clients (no Origin header).
var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// @Summary      Backend health stream
// @Description  WebSocket pushing a health report on connect and every ?interval= (or ?interval_ms=), at most 10s
// @Tags         system
// @Router       /ws/health [get]
func (h *Handler) wsHealth(c *gin.Context) {
	every := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(inboundLimit)
	_ = conn.SetReadDeadline(time.Now().Add(peerIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(peerIdleTimeout))
	})

	closed := make(chan struct{})
	go h.drainInbound(conn, closed)

	h.streamHealth(c.Request.Context(), conn, every, closed)
}

// streamHealth writes one report right away, then one per tick, until the
// peer goes away or a write fails.
func (h *Handler) streamHealth(ctx context.Context, conn *websocket.Conn, every time.Duration, closed <-chan struct{}) {
	reports := time.NewTicker(every)
	defer reports.Stop()
	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	event := "ws_health_write_failed"
	err := h.sendHealth(ctx, conn)
	for err == nil {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			event = "ws_keepalive_failed"
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(healthWriteTimeout))
		case <-reports.C:
			event = "ws_health_write_failed"
			err = h.sendHealth(ctx, conn)
		}
	}
	if h.log != nil {
		h.log.Infow(event, "err", err)
	}
}

// parseInterval takes ?interval=2s first, then ?interval_ms=2000. Values
// outside (0, maxInterval] fall back to defaultInterval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	inRange := func(d time.Duration) bool { return d > 0 && d <= maxInterval }

	if raw := c.Query("interval"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && inRange(d) {
			return d
		}
	}
	if raw := c.Query("interval_ms"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && inRange(time.Duration(ms)*time.Millisecond) {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultInterval
}

// drainInbound discards client messages so pongs and close frames get
// processed, and closes closed once the connection drops.
func (h *Handler) drainInbound(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_peer_gone", "err", err)
			}
			return
		}
	}
}

// sendHealth writes the current report. A failed probe is still a report;
// only write errors end the stream.
func (h *Handler) sendHealth(ctx context.Context, conn *websocket.Conn) error {
	report := h.services.Check(ctx)
	_ = conn.SetWriteDeadline(time.Now().Add(healthWriteTimeout))
	return conn.WriteJSON(wsEnvelope{Type: "health", Data: report})
}
