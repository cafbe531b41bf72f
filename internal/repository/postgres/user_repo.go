package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements repository.UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new account row.
func (r *UserRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, a.ID, a.Username, a.PwdHash, string(a.Role)).Scan(&a.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByUsername selects an account by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT id, username, pwd_hash, role, created_at
FROM users WHERE username=$1`
	var (
		a    model.Account
		role string
	)
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(&a.ID, &a.Username, &a.PwdHash, &role, &a.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, errs.ErrNotFound
	case err != nil:
		return nil, err
	}
	a.Role = model.Role(role)
	return &a, nil
}

// List returns all accounts, oldest first.
func (r *UserRepo) List(ctx context.Context) ([]model.Account, error) {
	const q = `SELECT id, username, role, created_at FROM users ORDER BY created_at, username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		var (
			a    model.Account
			role string
		)
		if err := rows.Scan(&a.ID, &a.Username, &role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		a.Role = model.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of accounts.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
