package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrAmbiguousIdentity = errors.New("email exists in both account tables")
	ErrProtectedAccount  = errors.New("admin accounts cannot be deleted or demoted")
	ErrInvalidOperation  = errors.New("operation not valid for this account variant")
	ErrPermissionDenied  = errors.New("permission denied")
)

// Repository contains all DB interactions needed by the identity service.
// Create and update methods map unique-constraint violations on email to
// ErrDuplicateEmail; the constraint is the authoritative duplicate signal.
type Repository interface {
	CreatePatient(ctx context.Context, p *Patient) error
	CreateTherapist(ctx context.Context, t *Therapist) error

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetTherapistByID(ctx context.Context, id uuid.UUID) (*Therapist, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)
	GetTherapistByEmail(ctx context.Context, email string) (*Therapist, error)

	ListPatients(ctx context.Context) ([]Patient, error)
	ListTherapists(ctx context.Context) ([]Therapist, error)
	ListApprovedTherapists(ctx context.Context) ([]Therapist, error)

	UpdatePatient(ctx context.Context, p *Patient) error
	UpdateTherapist(ctx context.Context, t *Therapist) error

	SetTherapistApproval(ctx context.Context, id uuid.UUID, approved bool) error
	SetTherapistBlogAuthorization(ctx context.Context, id uuid.UUID, canPost bool) error
	SetPatientRole(ctx context.Context, id uuid.UUID, role Role) error

	DeletePatient(ctx context.Context, id uuid.UUID) error
	DeleteTherapist(ctx context.Context, id uuid.UUID) error

	// DeleteAllExcept removes every row from both tables whose email differs
	// from keepEmail. Returns deleted counts per table.
	DeleteAllExcept(ctx context.Context, keepEmail string) (patients, therapists int64, err error)
}
