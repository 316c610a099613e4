// Package postgres provides pgx-backed persistence for sessions and reference rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/presence/internal/domain"
	"example.com/presence/internal/observability"
)

// Repository provides Postgres-backed persistence for the session store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordTransition closes the user's open session and opens a new one in a
// single transaction. Transitions for the same user are serialized with a
// transaction-scoped advisory lock; different users proceed in parallel.
func (r *Repository) RecordTransition(ctx context.Context, change domain.Change) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", change.UserID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO activities (label) VALUES ($1) ON CONFLICT (label) DO NOTHING`,
		change.Activity,
	); err != nil {
		return err
	}

	// Closing zero rows is fine: the user simply had no open session.
	if _, err = tx.Exec(ctx,
		`UPDATE sessions SET ended_at = $1 WHERE user_id = $2 AND ended_at IS NULL`,
		change.ObservedAt, change.UserID,
	); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO sessions (user_id, activity, started_at) VALUES ($1, $2, $3)`,
		change.UserID, change.Activity, change.ObservedAt,
	); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO users (user_id, display_name, role) VALUES ($1, $2, $3)
         ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role`,
		change.UserID, change.DisplayName, change.Role,
	); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordTransitionPersisted(change.ObservedAt)
	return nil
}

// RawSessionsByUser returns every session row for the user ordered by activity
// label, the pre-grouping the reconciler relies on. NULL timestamps map to the
// zero time.
func (r *Repository) RawSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	const query = `SELECT session_id, user_id, activity, started_at, ended_at
        FROM sessions WHERE user_id = $1 ORDER BY activity ASC, session_id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		var (
			s       domain.Session
			started *time.Time
			ended   *time.Time
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Activity, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if started != nil {
			s.Start = *started
		}
		if ended != nil {
			s.End = *ended
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetUser returns the user row, or nil when the user was never observed.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	const query = `SELECT user_id, display_name, role FROM users WHERE user_id = $1`

	var user domain.User
	row := r.pool.QueryRow(ctx, query, userID)
	if err := row.Scan(&user.ID, &user.DisplayName, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// OpenSessionCount reports how many open sessions the user currently has.
// The recorder's invariant keeps this at zero or one.
func (r *Repository) OpenSessionCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND ended_at IS NULL`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
