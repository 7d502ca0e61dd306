package session

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// cookieMaxAge keeps the browser slot for 30 days; the backend still decides validity.
const cookieMaxAge = 30 * 24 * 60 * 60

// CookieStore is the per-request view of the browser's token cookie.
// Writes are visible to later reads in the same request.
type CookieStore struct {
	c      *gin.Context
	secure bool

	mu      sync.Mutex
	written bool
	token   string
}

func NewCookieStore(c *gin.Context, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure}
}

func (s *CookieStore) available() bool {
	return s != nil && s.c != nil && s.c.Request != nil
}

func (s *CookieStore) Get() (string, bool) {
	if !s.available() {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.written {
		return s.token, s.token != ""
	}
	v, err := s.c.Cookie(TokenKey)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *CookieStore) Set(token string) {
	if !s.available() {
		return
	}
	if token == "" {
		s.Clear()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(token, cookieMaxAge)
}

func (s *CookieStore) Clear() {
	if !s.available() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write("", -1)
}

func (s *CookieStore) write(token string, maxAge int) {
	s.written = true
	s.token = token
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(TokenKey, token, maxAge, "/", "", s.secure, true)
}
