package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PgRepository) CountPatients(ctx context.Context, excludeAdmins bool) (int64, error) {
	if excludeAdmins {
		return r.count(ctx, `SELECT count(*) FROM users WHERE role <> 'ADMIN'`)
	}
	return r.count(ctx, `SELECT count(*) FROM users`)
}

func (r *PgRepository) CountTherapists(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT count(*) FROM therapists`)
}

func (r *PgRepository) CountPosts(ctx context.Context, publishedOnly bool) (int64, error) {
	if publishedOnly {
		return r.count(ctx, `SELECT count(*) FROM posts WHERE published`)
	}
	return r.count(ctx, `SELECT count(*) FROM posts`)
}

func (r *PgRepository) CountSessions(ctx context.Context, status *SessionStatus) (int64, error) {
	if status != nil {
		return r.count(ctx, `SELECT count(*) FROM sessions WHERE status = $1`, *status)
	}
	return r.count(ctx, `SELECT count(*) FROM sessions`)
}

func (r *PgRepository) CountPatientSessions(ctx context.Context, patientID uuid.UUID, status SessionStatus) (int64, error) {
	return r.count(ctx, `
		SELECT count(*) FROM sessions
		WHERE user_id = $1 AND status = $2
	`, patientID, status)
}

func (r *PgRepository) CountTherapistSessionsBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time) (int64, error) {
	return r.count(ctx, `
		SELECT count(*) FROM sessions
		WHERE therapist_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
	`, therapistID, from, to)
}

func (r *PgRepository) CountDistinctPatients(ctx context.Context, therapistID uuid.UUID) (int64, error) {
	return r.count(ctx, `
		SELECT count(DISTINCT user_id) FROM sessions
		WHERE therapist_id = $1
	`, therapistID)
}
