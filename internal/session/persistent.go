package session

import (
	"context"

	"social_gateway/internal/logger"
	"social_gateway/internal/repository"
)

// PersistentStore keeps the slot in the CLI's SQLite file so the session
// survives across invocations. Repository failures are logged and read as
// "no token".
type PersistentStore struct {
	repo repository.TokenRepo
	log  *logger.Logger
}

func NewPersistentStore(repo repository.TokenRepo, log *logger.Logger) *PersistentStore {
	return &PersistentStore{repo: repo, log: log}
}

func (s *PersistentStore) Get() (string, bool) {
	if s == nil || s.repo == nil {
		return "", false
	}
	token, err := s.repo.Load(context.Background(), TokenKey)
	if err != nil {
		s.warn("session_load_failed", err)
		return "", false
	}
	return token, token != ""
}

func (s *PersistentStore) Set(token string) {
	if s == nil || s.repo == nil {
		return
	}
	if token == "" {
		s.Clear()
		return
	}
	if err := s.repo.Save(context.Background(), TokenKey, token); err != nil {
		s.warn("session_save_failed", err)
	}
}

func (s *PersistentStore) Clear() {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Delete(context.Background(), TokenKey); err != nil {
		s.warn("session_clear_failed", err)
	}
}

func (s *PersistentStore) warn(key string, err error) {
	if s.log != nil {
		s.log.Warnw(key, "err", err)
	}
}
