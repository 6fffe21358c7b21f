// Package stats computes point-in-time dashboard counts over the identity,
// content and session tables. All reads, no caching; correctness means the
// counts match the store at call time.
package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// AdminStats exposes both patient-count policies as distinct metrics;
// dashboards display PatientsExcludingAdmins.
type AdminStats struct {
	Patients                int64
	PatientsExcludingAdmins int64
	Therapists              int64
	Posts                   int64
	PublishedPosts          int64
	Sessions                int64
	SessionsScheduled       int64
	SessionsCompleted       int64
	SessionsCancelled       int64
}

type PatientStats struct {
	UpcomingSessions  int64
	CompletedSessions int64
}

type TherapistStats struct {
	SessionsToday    int64
	DistinctPatients int64
}

// Repository contains the aggregation queries.
type Repository interface {
	CountPatients(ctx context.Context, excludeAdmins bool) (int64, error)
	CountTherapists(ctx context.Context) (int64, error)
	CountPosts(ctx context.Context, publishedOnly bool) (int64, error)
	CountSessions(ctx context.Context, status *SessionStatus) (int64, error)
	CountPatientSessions(ctx context.Context, patientID uuid.UUID, status SessionStatus) (int64, error)
	CountTherapistSessionsBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time) (int64, error)
	CountDistinctPatients(ctx context.Context, therapistID uuid.UUID) (int64, error)
}
