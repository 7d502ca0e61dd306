package repository

import (
	"context"
	"database/sql"
)

// TokenRepo persists named token slots.
type TokenRepo interface {
	Save(ctx context.Context, key, token string) error
	// Load returns ("", nil) when the slot is empty.
	Load(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Repository struct {
	Tokens TokenRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Tokens: NewTokenSQLite(db),
	}
}
