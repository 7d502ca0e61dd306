package session

import (
	"context"
	"errors"
	"testing"
)

type mockTokenRepo struct {
	tokens  map[string]string
	loadErr error
	saveErr error

	saves   int
	deletes int
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: map[string]string{}}
}

func (m *mockTokenRepo) Save(ctx context.Context, key, token string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tokens[key] = token
	return nil
}

func (m *mockTokenRepo) Load(ctx context.Context, key string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.tokens[key], nil
}

func (m *mockTokenRepo) Delete(ctx context.Context, key string) error {
	m.deletes++
	delete(m.tokens, key)
	return nil
}

func TestPersistentStore_RoundTrip(t *testing.T) {
	repo := newMockTokenRepo()
	s := NewPersistentStore(repo, nil)

	if _, ok := s.Get(); ok {
		t.Fatalf("expected empty slot")
	}
	s.Set("abc123")
	if repo.tokens[TokenKey] != "abc123" {
		t.Fatalf("token not saved under %q: %+v", TokenKey, repo.tokens)
	}
	if got, ok := s.Get(); !ok || got != "abc123" {
		t.Fatalf("Get = %q,%v", got, ok)
	}
	s.Clear()
	if _, ok := s.Get(); ok || repo.deletes != 1 {
		t.Fatalf("expected cleared slot, deletes=%d", repo.deletes)
	}
}

func TestPersistentStore_RepoFailureReadsAsEmpty(t *testing.T) {
	repo := newMockTokenRepo()
	repo.tokens[TokenKey] = "abc123"
	repo.loadErr = errors.New("database is locked")
	s := NewPersistentStore(repo, nil)

	if _, ok := s.Get(); ok {
		t.Fatalf("load failure must read as no token")
	}
}

func TestPersistentStore_NilRepo(t *testing.T) {
	s := NewPersistentStore(nil, nil)
	s.Set("x")
	s.Clear()
	if _, ok := s.Get(); ok {
		t.Fatalf("nil repo must read as no token")
	}
}
