package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
)

// SessionRepository persists login sessions. The store guarantees at most one
// valid session per user: Replace supersedes any existing valid session in the
// same transaction that creates the new one.
type SessionRepository interface {
	Replace(ctx context.Context, userID int64, sessionID string, at time.Time) (*domain.Session, error)
	Invalidate(ctx context.Context, sessionID string) error
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	FindValidByUser(ctx context.Context, userID int64) (*domain.Session, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Replace(ctx context.Context, userID int64, sessionID string, at time.Time) (*domain.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE sessions SET valid=false WHERE user_id=$1 AND valid`, userID); err != nil {
		return nil, err
	}

	session := &domain.Session{ID: sessionID, UserID: userID, CreatedAt: at, Valid: true}
	const insert = `INSERT INTO sessions (id, user_id, created_at, valid) VALUES ($1, $2, $3, true)`
	if _, err := tx.Exec(ctx, insert, session.ID, session.UserID, session.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) Invalidate(ctx context.Context, sessionID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sessions SET valid=false WHERE id=$1`, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	const query = `SELECT id, user_id, created_at, valid FROM sessions WHERE id=$1`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.Valid,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindValidByUser(ctx context.Context, userID int64) (*domain.Session, error) {
	const query = `SELECT id, user_id, created_at, valid FROM sessions WHERE user_id=$1 AND valid`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.Valid,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
