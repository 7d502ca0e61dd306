package session

import "sync/atomic"

// MemoryStore is a process-wide slot. Readers observe either the previous or
// the new token, never a partial write.
type MemoryStore struct {
	token atomic.Pointer[string]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool) {
	p := s.token.Load()
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

func (s *MemoryStore) Set(token string) {
	if token == "" {
		s.Clear()
		return
	}
	s.token.Store(&token)
}

func (s *MemoryStore) Clear() {
	s.token.Store(nil)
}
