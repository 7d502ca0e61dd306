package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"social_gateway/internal/client"
	"social_gateway/internal/config"
	"social_gateway/internal/models"
	"social_gateway/internal/session"
)

type callCounter struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *callCounter) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[key]
}

func (c *callCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, v := range c.n {
		total += v
	}
	return total
}

// newAPI serves canned JSON per "METHOD /path" and counts calls.
func newAPI(t *testing.T, routes map[string]string, status map[string]int) (*httptest.Server, *callCounter) {
	t.Helper()
	calls := &callCounter{n: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		calls.mu.Lock()
		calls.n[key]++
		calls.mu.Unlock()
		body, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		code := http.StatusOK
		if s, ok := status[key]; ok {
			code = s
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func memClient(url, token string) *client.Client {
	store := session.NewMemoryStore()
	store.Set(token)
	return client.New(url+"/api", store)
}

func TestGetAPIURL(t *testing.T) {
	t.Setenv(envAPIURL, "")
	t.Setenv("CLIENT_BASE_URL", "")
	apiURL = ""
	if got := GetAPIURL(); got != client.DefaultBaseURL {
		t.Errorf("default = %s", got)
	}

	t.Setenv(envAPIURL, "http://gw.example.com/api")
	if got := GetAPIURL(); got != "http://gw.example.com/api" {
		t.Errorf("env = %s", got)
	}

	apiURL = "http://flag.example.com/api"
	defer func() { apiURL = "" }()
	if got := GetAPIURL(); got != "http://flag.example.com/api" {
		t.Errorf("flag should override env, got %s", got)
	}
}

func TestGetDBPath(t *testing.T) {
	t.Setenv(envDBPath, "")
	t.Setenv("SESSION_DB_PATH", "")
	dbPath = ""
	if got := GetDBPath(); got != config.DefaultSessionDBPath {
		t.Errorf("default = %s", got)
	}
	t.Setenv(envDBPath, "/tmp/x.db")
	if got := GetDBPath(); got != "/tmp/x.db" {
		t.Errorf("env = %s", got)
	}
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	srv, calls := newAPI(t, map[string]string{
		"POST /api/login":   `{"status":"success","data":{"token":"abc123"}}`,
		"GET /api/users/me": `{"id":1,"username":"alice","displayName":"Alice","followersCount":3}`,
	}, nil)
	apiURL = srv.URL + "/api"
	dbPath = filepath.Join(t.TempDir(), "session.db")
	defer func() { apiURL, dbPath = "", "" }()

	c, closeStore, err := openClient()
	if err != nil {
		t.Fatalf("openClient: %v", err)
	}
	var buf bytes.Buffer
	if code := runLogin(context.Background(), c, &buf, "alice", "secret"); code != exitOK {
		t.Fatalf("login exit %d: %s", code, buf.String())
	}
	closeStore()

	c, closeStore, err = openClient()
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeStore()
	if token, ok := c.Store().Get(); !ok || token != "abc123" {
		t.Fatalf("token not persisted, got %q", token)
	}

	buf.Reset()
	if code := runWhoami(context.Background(), c, &buf); code != exitOK {
		t.Fatalf("whoami exit %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Alice (@alice)") {
		t.Fatalf("whoami output %q", buf.String())
	}
	if n := calls.count("POST /api/login"); n != 1 {
		t.Fatalf("login calls %d", n)
	}
}

func TestLoginFailure(t *testing.T) {
	srv, _ := newAPI(t, map[string]string{
		"POST /api/login": `{"message":"Invalid username or password"}`,
	}, map[string]int{"POST /api/login": http.StatusUnauthorized})

	c := memClient(srv.URL, "")
	var buf bytes.Buffer
	if code := runLogin(context.Background(), c, &buf, "alice", "nope"); code != exitFailure {
		t.Fatalf("exit %d", code)
	}
	if got := buf.String(); got != "Login failed: Invalid username or password\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRejectedSessionPrintsHintOnce(t *testing.T) {
	srv, _ := newAPI(t, map[string]string{
		"GET /api/posts": `{"message":"expired"}`,
	}, map[string]int{"GET /api/posts": http.StatusUnauthorized})

	c := memClient(srv.URL, "stale")
	var buf bytes.Buffer
	if code := runFeed(context.Background(), c, &buf, "", 0, 20); code != exitUnauthenticated {
		t.Fatalf("exit %d", code)
	}
	if n := strings.Count(buf.String(), "socialctl login"); n != 1 {
		t.Fatalf("expected one re-login hint, got %d in %q", n, buf.String())
	}
	if _, ok := c.Store().Get(); ok {
		t.Fatalf("token must be cleared")
	}
}

func TestWhoamiWithoutSession(t *testing.T) {
	srv, calls := newAPI(t, nil, nil)
	var buf bytes.Buffer
	if code := runWhoami(context.Background(), memClient(srv.URL, ""), &buf); code != exitUnauthenticated {
		t.Fatalf("exit %d", code)
	}
	if calls.total() != 0 {
		t.Fatalf("no request expected without a token")
	}
}

func TestFeedAndActions(t *testing.T) {
	srv, calls := newAPI(t, map[string]string{
		"GET /api/posts":             `[{"id":7,"content":"hello","user":{"username":"bob"},"likeCount":2}]`,
		"POST /api/posts":            `{"id":8,"content":"hi there"}`,
		"POST /api/posts/7/like":     `{}`,
		"GET /api/users/bob":         `{"id":3,"username":"bob"}`,
		"DELETE /api/users/3/follow": `{}`,
	}, map[string]int{"POST /api/posts": http.StatusCreated})
	c := memClient(srv.URL, "T")
	ctx := context.Background()

	var buf bytes.Buffer
	if code := runFeed(ctx, c, &buf, "", 0, 20); code != exitOK || !strings.Contains(buf.String(), "[7] @bob") {
		t.Fatalf("feed %d: %q", code, buf.String())
	}

	buf.Reset()
	if code := runPost(ctx, c, &buf, "hi there"); code != exitOK || buf.String() != "Posted [8]\n" {
		t.Fatalf("post %d: %q", code, buf.String())
	}

	buf.Reset()
	if code := runPostAction(ctx, c, &buf, "7", (*client.Client).Like, "Liked post %d\n"); code != exitOK || buf.String() != "Liked post 7\n" {
		t.Fatalf("like %d: %q", code, buf.String())
	}

	buf.Reset()
	if code := runPostAction(ctx, c, &buf, "x", (*client.Client).Like, "Liked post %d\n"); code != exitFailure {
		t.Fatalf("bad id exit %d", code)
	}

	buf.Reset()
	if code := runFollow(ctx, c, &buf, "bob", (*client.Client).Unfollow, "No longer following @%s\n"); code != exitOK {
		t.Fatalf("unfollow %d: %q", code, buf.String())
	}
	if calls.count("DELETE /api/users/3/follow") != 1 {
		t.Fatalf("unfollow not sent")
	}
}

func TestProfileUpdate(t *testing.T) {
	srv, calls := newAPI(t, map[string]string{
		"PUT /api/users/me": `{"id":1,"username":"alice","displayName":"Alice L","followersCount":2,"followingCount":3}`,
	}, nil)
	c := memClient(srv.URL, "tok")

	var buf bytes.Buffer
	if code := runProfile(context.Background(), c, &buf, models.ProfileUpdate{}); code != exitSetup {
		t.Fatalf("empty update exit %d", code)
	}
	if calls.total() != 0 {
		t.Fatalf("empty update must not reach the backend")
	}

	buf.Reset()
	if code := runProfile(context.Background(), c, &buf, models.ProfileUpdate{DisplayName: "Alice L"}); code != exitOK {
		t.Fatalf("exit %d: %q", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Alice L (@alice)") {
		t.Fatalf("output %q", buf.String())
	}
	if calls.count("PUT /api/users/me") != 1 {
		t.Fatalf("expected one PUT")
	}
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name     string
		backend  string
		wantCode int
	}{
		{"healthy", models.BackendHealthy, exitOK},
		{"unavailable", models.BackendUnavailable, exitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newAPI(t, map[string]string{
				"GET /api/health": `{"status":"ok","timestamp":"2024-01-02T03:04:05Z","services":{"frontend":"ok","backend":"` + tc.backend + `"}}`,
			}, nil)
			var buf bytes.Buffer
			if code := runHealth(context.Background(), memClient(srv.URL, ""), &buf); code != tc.wantCode {
				t.Fatalf("exit %d", code)
			}
			if !strings.Contains(buf.String(), "Backend:   "+tc.backend) {
				t.Fatalf("output %q", buf.String())
			}
		})
	}
}

func TestRunTest(t *testing.T) {
	srv, _ := newAPI(t, map[string]string{
		"GET /api/test":   `{"status":"success"}`,
		"POST /api/login": `{"message":"Invalid username or password"}`,
	}, map[string]int{"POST /api/login": http.StatusUnauthorized})
	c := memClient(srv.URL, "keep")

	var buf bytes.Buffer
	if code := runTest(context.Background(), c, &buf, "route"); code != exitOK || !strings.HasPrefix(buf.String(), "Status: 200 OK") {
		t.Fatalf("route %d: %q", code, buf.String())
	}

	buf.Reset()
	if code := runTest(context.Background(), c, &buf, "login"); code != exitOK || !strings.HasPrefix(buf.String(), "Status: 401 Unauthorized") {
		t.Fatalf("login %d: %q", code, buf.String())
	}
	if _, ok := c.Store().Get(); !ok {
		t.Fatalf("diagnostic calls must not clear the session")
	}

	buf.Reset()
	if code := runTest(context.Background(), c, &buf, "bogus"); code != exitFailure {
		t.Fatalf("unknown test exit %d", code)
	}
}
