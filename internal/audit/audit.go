// Package audit records admin-visible mutation events (approvals, role
// changes, deletions) in an append-only table. Recording failures never fail
// the mutation that produced them; callers log and continue.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventTherapistApproved = "THERAPIST_APPROVED"
	EventTherapistRejected = "THERAPIST_REJECTED"
	EventBlogAuthorized    = "BLOG_AUTHORIZED"
	EventBlogRevoked       = "BLOG_REVOKED"
	EventRoleChanged       = "ROLE_CHANGED"
	EventAccountDeleted    = "ACCOUNT_DELETED"
	EventAccountsReset     = "ACCOUNTS_RESET"
)

type Event struct {
	Type      string
	ActorID   *uuid.UUID
	TargetID  *uuid.UUID
	Payload   map[string]any
	CreatedAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

type PgRecorder struct {
	pool *pgxpool.Pool
}

func NewPgRecorder(pool *pgxpool.Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

func (r *PgRecorder) Record(ctx context.Context, ev Event) error {
	var payload []byte
	if ev.Payload != nil {
		var err error
		payload, err = json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_events (event_type, actor_id, target_id, payload, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, ev.Type, ev.ActorID, ev.TargetID, payload)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	return nil
}

// NopRecorder discards events. Used in tests and tools that do not need an
// audit trail.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }
