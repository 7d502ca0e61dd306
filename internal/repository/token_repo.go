package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type TokenSQLite struct {
	db *sql.DB
}

func NewTokenSQLite(db *sql.DB) *TokenSQLite {
	return &TokenSQLite{db: db}
}

var _ TokenRepo = (*TokenSQLite)(nil)

const (
	upsertTokenSQL = `
		INSERT INTO session_tokens (key, token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			token=excluded.token,
			updated_at=excluded.updated_at
	`
	selectTokenSQL = `SELECT token FROM session_tokens WHERE key = ?`
	deleteTokenSQL = `DELETE FROM session_tokens WHERE key = ?`
)

// Save writes token under key, replacing any previous value in one statement.
func (r *TokenSQLite) Save(ctx context.Context, key, token string) error {
	if _, err := r.db.ExecContext(ctx, upsertTokenSQL, key, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("save token %q: %w", key, err)
	}
	return nil
}

func (r *TokenSQLite) Load(ctx context.Context, key string) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, selectTokenSQL, key).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load token %q: %w", key, err)
	}
	return token, nil
}

func (r *TokenSQLite) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteTokenSQL, key); err != nil {
		return fmt.Errorf("delete token %q: %w", key, err)
	}
	return nil
}
