package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"social_gateway/internal/models"
	"social_gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws/health", defaultInterval},
		{"interval_string_valid", "/ws/health?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws/health?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws/health?interval=20s", defaultInterval},
		{"interval_ms_too_large", "/ws/health?interval_ms=20000", defaultInterval},
		{"interval_invalid_string", "/ws/health?interval=bogus", defaultInterval},
		{"interval_ms_invalid", "/ws/health?interval_ms=NaN", defaultInterval},
		{"both_present_interval_wins", "/ws/health?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws/health?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestSameOrigin(t *testing.T) {
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://gateway.local:8080", true},
		{"http://evil.example", false},
		{"::not a url", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://gateway.local:8080/ws/health", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := sameOrigin(req); got != tc.want {
			t.Fatalf("origin %q: got %v, want %v", tc.origin, got, tc.want)
		}
	}
}

// --- websocket integration tests ---

func dialHealth(t *testing.T, s *service.Service, query url.Values) *websocket.Conn {
	t.Helper()
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws/health", h.wsHealth)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/health"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket_HealthStream_InitialAndPeriodic(t *testing.T) {
	hm := &mockHealth{backend: "status: 503"}
	conn := dialHealth(t, &service.Service{Health: hm}, url.Values{"interval_ms": {"20"}})

	type envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "health" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var rep models.HealthReport
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if rep.Status != "ok" || rep.Services.Frontend != "ok" || rep.Services.Backend != "status: 503" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "health" {
		t.Fatalf("expected type=health, got %+v", env)
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	r := gin.New()
	h := NewHandler(&service.Service{Health: &mockHealth{}}, nil)
	r.GET("/ws/health", h.wsHealth)
	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/health"
	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}
