package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/psicoasis/oasis-backend/internal/audit"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

type Service struct {
	repo     Repository
	recorder audit.Recorder
}

func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
	}
}

type RegisterInput struct {
	Kind        AccountKind
	Email       string
	Name        string
	Profile     json.RawMessage
	License     *string // therapists only
	Bio         *string
	Specialties []string
	PhotoURL    *string
}

// Register creates a new Patient or Therapist. The email must be unused
// across both tables; the pre-check gives a friendly error, the unique
// constraint on insert is the authoritative duplicate signal.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	email := validate.NormalizeEmail(in.Email)
	if err := validate.Email(email); err != nil {
		return Account{}, err
	}
	if err := validate.Name(in.Name); err != nil {
		return Account{}, err
	}

	inUse, err := s.emailInUse(ctx, email)
	if err != nil {
		return Account{}, fmt.Errorf("check email: %w", err)
	}
	if inUse {
		return Account{}, ErrDuplicateEmail
	}

	switch in.Kind {
	case KindPatient:
		name := in.Name
		p := &Patient{
			ID:      uuid.New(),
			Email:   email,
			Name:    &name,
			Role:    RoleUser,
			Profile: in.Profile,
		}
		if err := s.repo.CreatePatient(ctx, p); err != nil {
			return Account{}, err
		}
		return Account{Kind: KindPatient, Patient: p}, nil

	case KindTherapist:
		// New therapists always start unapproved and without blog access;
		// both gates are opened by an admin, never at registration.
		t := &Therapist{
			ID:          uuid.New(),
			Email:       email,
			Name:        in.Name,
			License:     in.License,
			Bio:         in.Bio,
			Specialties: in.Specialties,
			PhotoURL:    in.PhotoURL,
			Approved:    false,
			CanPostBlog: false,
			Profile:     in.Profile,
		}
		if t.Specialties == nil {
			t.Specialties = []string{}
		}
		if err := s.repo.CreateTherapist(ctx, t); err != nil {
			return Account{}, err
		}
		return Account{Kind: KindTherapist, Therapist: t}, nil

	default:
		return Account{}, &validate.Error{Field: "type", Reason: "must be patient or therapist"}
	}
}

// ResolveByID probes both tables. A lookup that only checks one table would
// produce false negatives for the other variant.
func (s *Service) ResolveByID(ctx context.Context, id uuid.UUID) (Account, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err == nil {
		return Account{Kind: KindPatient, Patient: p}, nil
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return Account{}, fmt.Errorf("load patient: %w", err)
	}

	t, err := s.repo.GetTherapistByID(ctx, id)
	if err == nil {
		return Account{Kind: KindTherapist, Therapist: t}, nil
	}
	if !errors.Is(err, ErrTherapistNotFound) {
		return Account{}, fmt.Errorf("load therapist: %w", err)
	}

	return Account{}, ErrAccountNotFound
}

// ResolveByEmail probes both tables. An email present in both is a broken
// invariant and is surfaced as ErrAmbiguousIdentity, never silently picked.
func (s *Service) ResolveByEmail(ctx context.Context, email string) (Account, error) {
	email = validate.NormalizeEmail(email)

	p, perr := s.repo.GetPatientByEmail(ctx, email)
	if perr != nil && !errors.Is(perr, ErrPatientNotFound) {
		return Account{}, fmt.Errorf("load patient: %w", perr)
	}

	t, terr := s.repo.GetTherapistByEmail(ctx, email)
	if terr != nil && !errors.Is(terr, ErrTherapistNotFound) {
		return Account{}, fmt.Errorf("load therapist: %w", terr)
	}

	switch {
	case p != nil && t != nil:
		return Account{}, ErrAmbiguousIdentity
	case p != nil:
		return Account{Kind: KindPatient, Patient: p}, nil
	case t != nil:
		return Account{Kind: KindTherapist, Therapist: t}, nil
	default:
		return Account{}, ErrAccountNotFound
	}
}

// ResolveActor builds the permission-evaluator descriptor from optional
// patient/therapist IDs. An unknown or absent ID yields the zero Actor, which
// every permission check denies; storage failures still propagate.
func (s *Service) ResolveActor(ctx context.Context, patientID, therapistID *uuid.UUID) (Actor, error) {
	if patientID != nil {
		p, err := s.repo.GetPatientByID(ctx, *patientID)
		if err == nil {
			return p.Actor(), nil
		}
		if !errors.Is(err, ErrPatientNotFound) {
			return Actor{}, fmt.Errorf("load patient: %w", err)
		}
	}

	if therapistID != nil {
		t, err := s.repo.GetTherapistByID(ctx, *therapistID)
		if err == nil {
			return t.Actor(), nil
		}
		if !errors.Is(err, ErrTherapistNotFound) {
			return Actor{}, fmt.Errorf("load therapist: %w", err)
		}
	}

	return Actor{}, nil
}

// SetTherapistApproval flips the public-listing gate. Admin-only, idempotent.
func (s *Service) SetTherapistApproval(ctx context.Context, actor Actor, id uuid.UUID, approved bool) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}

	if err := s.repo.SetTherapistApproval(ctx, id, approved); err != nil {
		return err
	}

	event := audit.EventTherapistApproved
	if !approved {
		event = audit.EventTherapistRejected
	}
	s.logEvent(ctx, actor, id, event, nil)

	return nil
}

// SetTherapistBlogAuthorization flips the content-write gate, independent of
// approval. Admin-only, idempotent.
func (s *Service) SetTherapistBlogAuthorization(ctx context.Context, actor Actor, id uuid.UUID, canPost bool) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}

	if err := s.repo.SetTherapistBlogAuthorization(ctx, id, canPost); err != nil {
		return err
	}

	event := audit.EventBlogAuthorized
	if !canPost {
		event = audit.EventBlogRevoked
	}
	s.logEvent(ctx, actor, id, event, nil)

	return nil
}

// SetRole promotes or demotes a Patient. Therapists never hold roles through
// this path, and an existing admin can never be demoted here.
func (s *Service) SetRole(ctx context.Context, actor Actor, id uuid.UUID, role Role) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	if role != RoleUser && role != RoleAdmin {
		return &validate.Error{Field: "role", Reason: "must be USER or ADMIN"}
	}

	target, err := s.ResolveByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Kind == KindTherapist {
		return ErrInvalidOperation
	}
	if target.Patient.Role == RoleAdmin && role != RoleAdmin {
		return ErrProtectedAccount
	}
	if target.Patient.Role == role {
		return nil
	}

	if err := s.repo.SetPatientRole(ctx, id, role); err != nil {
		return err
	}

	s.logEvent(ctx, actor, id, audit.EventRoleChanged, map[string]any{
		"from": string(target.Patient.Role),
		"to":   string(role),
	})

	return nil
}

type UpdateInput struct {
	Name        *string
	Email       *string
	Profile     json.RawMessage
	License     *string // therapists only
	Bio         *string
	Specialties []string
	PhotoURL    *string
}

// UpdateAccount edits profile fields on either variant. Allowed for admins
// and for the account itself. Role changes go through SetRole only.
func (s *Service) UpdateAccount(ctx context.Context, actor Actor, id uuid.UUID, in UpdateInput) (Account, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return Account{}, ErrPermissionDenied
	}

	target, err := s.ResolveByID(ctx, id)
	if err != nil {
		return Account{}, err
	}

	if in.Email != nil {
		email := validate.NormalizeEmail(*in.Email)
		if err := validate.Email(email); err != nil {
			return Account{}, err
		}
		if email != target.Email() {
			inUse, err := s.emailInUse(ctx, email)
			if err != nil {
				return Account{}, fmt.Errorf("check email: %w", err)
			}
			if inUse {
				return Account{}, ErrDuplicateEmail
			}
		}
		*in.Email = email
	}
	if in.Name != nil {
		if err := validate.Name(*in.Name); err != nil {
			return Account{}, err
		}
	}

	if target.Kind == KindPatient {
		p := target.Patient
		if in.Email != nil {
			p.Email = *in.Email
		}
		if in.Name != nil {
			p.Name = in.Name
		}
		if in.Profile != nil {
			p.Profile = in.Profile
		}
		if err := s.repo.UpdatePatient(ctx, p); err != nil {
			return Account{}, err
		}
		return target, nil
	}

	t := target.Therapist
	if in.Email != nil {
		t.Email = *in.Email
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Profile != nil {
		t.Profile = in.Profile
	}
	if in.License != nil {
		t.License = in.License
	}
	if in.Bio != nil {
		t.Bio = in.Bio
	}
	if in.Specialties != nil {
		t.Specialties = in.Specialties
	}
	if in.PhotoURL != nil {
		t.PhotoURL = in.PhotoURL
	}
	if err := s.repo.UpdateTherapist(ctx, t); err != nil {
		return Account{}, err
	}

	return target, nil
}

// Delete removes an account. Admin identities are protected and can never be
// deleted.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}

	target, err := s.ResolveByID(ctx, id)
	if err != nil {
		return err
	}

	if target.Kind == KindPatient {
		if target.Patient.Role == RoleAdmin {
			return ErrProtectedAccount
		}
		if err := s.repo.DeletePatient(ctx, id); err != nil {
			return err
		}
	} else {
		if err := s.repo.DeleteTherapist(ctx, id); err != nil {
			return err
		}
	}

	s.logEvent(ctx, actor, id, audit.EventAccountDeleted, map[string]any{
		"kind": string(target.Kind),
	})

	return nil
}

// ListAccounts returns both variants for the admin dashboard, newest first
// within each variant.
func (s *Service) ListAccounts(ctx context.Context, actor Actor) ([]Patient, []Therapist, error) {
	if !actor.IsAdmin() {
		return nil, nil, ErrPermissionDenied
	}

	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list patients: %w", err)
	}

	therapists, err := s.repo.ListTherapists(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list therapists: %w", err)
	}

	return patients, therapists, nil
}

// ListApprovedTherapists returns the public directory.
func (s *Service) ListApprovedTherapists(ctx context.Context) ([]Therapist, error) {
	return s.repo.ListApprovedTherapists(ctx)
}

// ResetAccounts deletes every account except the default admin, then makes
// sure the default admin exists. Admin-only.
func (s *Service) ResetAccounts(ctx context.Context, actor Actor) (patients, therapists int64, err error) {
	if !actor.IsAdmin() {
		return 0, 0, ErrPermissionDenied
	}

	patients, therapists, err = s.repo.DeleteAllExcept(ctx, DefaultAdminEmail)
	if err != nil {
		return 0, 0, fmt.Errorf("reset accounts: %w", err)
	}

	if _, err := s.EnsureDefaultAdmin(ctx); err != nil {
		return 0, 0, err
	}

	s.logEvent(ctx, actor, uuid.Nil, audit.EventAccountsReset, map[string]any{
		"deleted_patients":   patients,
		"deleted_therapists": therapists,
	})

	return patients, therapists, nil
}

func (s *Service) emailInUse(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetPatientByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return false, err
	}

	_, err = s.repo.GetTherapistByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrTherapistNotFound) {
		return false, err
	}

	return false, nil
}

func (s *Service) logEvent(ctx context.Context, actor Actor, target uuid.UUID, eventType string, payload map[string]any) {
	ev := audit.Event{
		Type:    eventType,
		Payload: payload,
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		ev.ActorID = &actorID
	}
	if target != uuid.Nil {
		targetID := target
		ev.TargetID = &targetID
	}

	if err := s.recorder.Record(ctx, ev); err != nil {
		log.Printf("failed to record audit event %s: %v", eventType, err)
	}
}
