package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	var out AdminStats
	var err error

	if out.Patients, err = s.repo.CountPatients(ctx, false); err != nil {
		return AdminStats{}, fmt.Errorf("count patients: %w", err)
	}
	if out.PatientsExcludingAdmins, err = s.repo.CountPatients(ctx, true); err != nil {
		return AdminStats{}, fmt.Errorf("count non-admin patients: %w", err)
	}
	if out.Therapists, err = s.repo.CountTherapists(ctx); err != nil {
		return AdminStats{}, fmt.Errorf("count therapists: %w", err)
	}
	if out.Posts, err = s.repo.CountPosts(ctx, false); err != nil {
		return AdminStats{}, fmt.Errorf("count posts: %w", err)
	}
	if out.PublishedPosts, err = s.repo.CountPosts(ctx, true); err != nil {
		return AdminStats{}, fmt.Errorf("count published posts: %w", err)
	}
	if out.Sessions, err = s.repo.CountSessions(ctx, nil); err != nil {
		return AdminStats{}, fmt.Errorf("count sessions: %w", err)
	}

	for status, dst := range map[SessionStatus]*int64{
		SessionScheduled: &out.SessionsScheduled,
		SessionCompleted: &out.SessionsCompleted,
		SessionCancelled: &out.SessionsCancelled,
	} {
		st := status
		if *dst, err = s.repo.CountSessions(ctx, &st); err != nil {
			return AdminStats{}, fmt.Errorf("count %s sessions: %w", status, err)
		}
	}

	return out, nil
}

func (s *Service) PatientStats(ctx context.Context, patientID uuid.UUID) (PatientStats, error) {
	var out PatientStats
	var err error

	if out.UpcomingSessions, err = s.repo.CountPatientSessions(ctx, patientID, SessionScheduled); err != nil {
		return PatientStats{}, fmt.Errorf("count upcoming sessions: %w", err)
	}
	if out.CompletedSessions, err = s.repo.CountPatientSessions(ctx, patientID, SessionCompleted); err != nil {
		return PatientStats{}, fmt.Errorf("count completed sessions: %w", err)
	}

	return out, nil
}

func (s *Service) TherapistStats(ctx context.Context, therapistID uuid.UUID) (TherapistStats, error) {
	var out TherapistStats
	var err error

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	if out.SessionsToday, err = s.repo.CountTherapistSessionsBetween(ctx, therapistID, dayStart, dayEnd); err != nil {
		return TherapistStats{}, fmt.Errorf("count today's sessions: %w", err)
	}
	if out.DistinctPatients, err = s.repo.CountDistinctPatients(ctx, therapistID); err != nil {
		return TherapistStats{}, fmt.Errorf("count distinct patients: %w", err)
	}

	return out, nil
}
