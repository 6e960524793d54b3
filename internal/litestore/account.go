package litestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

var accountColumns = []string{"id", "username", "password_hash", "created_at"}

type accountRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

// CreateAccount inserts a.
func (s *Store) CreateAccount(ctx context.Context, a *model.Account) error {
	query := sq.Insert("accounts").
		Columns(accountColumns...).
		Values(a.ID, a.Username, a.PasswordHash, toUnix(a.CreatedAt))

	if _, err := s.exec(ctx, query); err != nil {
		if isUniqueViolation(err) {
			return store.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByID retrieves an account by ID.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	return s.getAccount(ctx, sq.Eq{"id": id})
}

// GetAccountByUsername retrieves an account by username, ignoring ASCII case.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.getAccount(ctx, sq.Expr("username = ? COLLATE NOCASE", username))
}

// SetPasswordHash replaces the password hash of account id.
func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	query := sq.Update("accounts").Set("password_hash", hash).Where(sq.Eq{"id": id})

	n, err := s.exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) getAccount(ctx context.Context, pred sq.Sqlizer) (*model.Account, error) {
	query := sq.Select(accountColumns...).From("accounts").Where(pred)

	var row accountRow
	if err := s.get(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &model.Account{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    fromUnix(row.CreatedAt),
	}, nil
}
