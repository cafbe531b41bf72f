package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG keeps attempt counters in the login_attempts table so all server
// instances share them.
type PG struct {
	q      pgxQuerier
	policy Policy
	now    func() time.Time
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter. *pgxpool.Pool satisfies q.
func NewPG(q pgxQuerier, p Policy) *PG {
	return &PG{q: q, policy: p, now: time.Now}
}

// Allow reads the block deadline of k.
func (l *PG) Allow(ctx context.Context, k Key) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_attempts WHERE username=$1 AND ip_hash=$2`
	var until time.Time
	err := l.q.QueryRow(ctx, q, k.Username, k.IPHash).Scan(&until)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	if wait := until.Sub(l.now()); wait > 0 {
		return false, wait, nil
	}
	return true, 0, nil
}

// Success removes the row of k.
func (l *PG) Success(ctx context.Context, k Key) error {
	_, err := l.q.Exec(ctx, `DELETE FROM login_attempts WHERE username=$1 AND ip_hash=$2`, k.Username, k.IPHash)
	return err
}

// Failure counts one failure in a single statement: the window restarts when
// it has elapsed, and the block deadline is set once the count reaches MaxFails.
func (l *PG) Failure(ctx context.Context, k Key) (bool, time.Duration, error) {
	now := l.now()
	const q = `
INSERT INTO login_attempts AS a (username, ip_hash, fail_count, window_start, blocked_until)
VALUES ($1, $2, 1, $3, CASE WHEN 1 >= $4 THEN $5::timestamptz ELSE 'epoch'::timestamptz END)
ON CONFLICT (username, ip_hash) DO UPDATE SET
  fail_count   = CASE WHEN a.window_start < $6 THEN 1 ELSE a.fail_count + 1 END,
  window_start = CASE WHEN a.window_start < $6 THEN $3 ELSE a.window_start END,
  blocked_until = CASE
    WHEN (CASE WHEN a.window_start < $6 THEN 1 ELSE a.fail_count + 1 END) >= $4 THEN $5::timestamptz
    ELSE a.blocked_until END
RETURNING fail_count, blocked_until`
	var (
		fails int
		until time.Time
	)
	err := l.q.QueryRow(ctx, q, k.Username, k.IPHash, now, l.policy.MaxFails, now.Add(l.policy.BlockFor), now.Add(-l.policy.Window)).
		Scan(&fails, &until)
	if err != nil {
		return false, 0, err
	}
	if wait := until.Sub(now); wait > 0 {
		return true, wait, nil
	}
	return false, 0, nil
}
