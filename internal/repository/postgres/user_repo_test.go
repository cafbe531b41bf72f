package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Username: "vendas1", PwdHash: []byte("h"), Role: model.RoleVendas}
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users \(id, username, pwd_hash, role\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING created_at`).
		WithArgs(a.ID, a.Username, a.PwdHash, "vendas").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	require.NoError(t, r.Create(ctx, a))
	require.Equal(t, created, a.CreatedAt)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(a.ID, a.Username, a.PwdHash, "vendas").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, a), errs.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, pwd_hash, role, created_at FROM users WHERE username=\$1`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "pwd_hash", "role", "created_at"}).
			AddRow(id, "admin", []byte("h"), "admin", now))
	a, err := r.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.Equal(t, model.RoleAdmin, a.Role)

	mock.ExpectQuery(`FROM users WHERE username=\$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`FROM users WHERE username=\$1`).
		WithArgs("x").
		WillReturnError(context.DeadlineExceeded)
	_, err = r.GetByUsername(ctx, "x")
	require.ErrorIs(t, err, context.DeadlineExceeded, "infrastructure errors are not masked as not found")
}

func TestUserRepo_ListAndCount(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	now := time.Now()
	id1, id2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, username, role, created_at FROM users ORDER BY created_at, username`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "role", "created_at"}).
			AddRow(id1, "admin", "admin", now).
			AddRow(id2, "vendas1", "vendas", now))
	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, model.RoleVendas, list[1].Role)
	require.Equal(t, model.UserID(id2.String()), list[1].Public().ID)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
