package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	patientID   uuid.UUID
	therapistID uuid.UUID
	status      SessionStatus
	scheduledAt time.Time
}

type fakeRepo struct {
	patients      int64
	adminPatients int64
	therapists    int64
	posts         int64
	published     int64
	sessions      []session
}

func (r *fakeRepo) CountPatients(ctx context.Context, excludeAdmins bool) (int64, error) {
	if excludeAdmins {
		return r.patients - r.adminPatients, nil
	}
	return r.patients, nil
}

func (r *fakeRepo) CountTherapists(ctx context.Context) (int64, error) {
	return r.therapists, nil
}

func (r *fakeRepo) CountPosts(ctx context.Context, publishedOnly bool) (int64, error) {
	if publishedOnly {
		return r.published, nil
	}
	return r.posts, nil
}

func (r *fakeRepo) CountSessions(ctx context.Context, status *SessionStatus) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if status == nil || s.status == *status {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountPatientSessions(ctx context.Context, patientID uuid.UUID, status SessionStatus) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.patientID == patientID && s.status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountTherapistSessionsBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.therapistID == therapistID && !s.scheduledAt.Before(from) && s.scheduledAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountDistinctPatients(ctx context.Context, therapistID uuid.UUID) (int64, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, s := range r.sessions {
		if s.therapistID == therapistID {
			seen[s.patientID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func TestAdminStats(t *testing.T) {
	repo := &fakeRepo{
		patients:      10,
		adminPatients: 1,
		therapists:    4,
		posts:         7,
		published:     5,
		sessions: []session{
			{status: SessionScheduled},
			{status: SessionScheduled},
			{status: SessionCompleted},
			{status: SessionCancelled},
		},
	}
	svc := NewService(repo)

	out, err := svc.AdminStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 10, out.Patients)
	assert.EqualValues(t, 9, out.PatientsExcludingAdmins)
	assert.EqualValues(t, 4, out.Therapists)
	assert.EqualValues(t, 7, out.Posts)
	assert.EqualValues(t, 5, out.PublishedPosts)
	assert.EqualValues(t, 4, out.Sessions)
	assert.EqualValues(t, 2, out.SessionsScheduled)
	assert.EqualValues(t, 1, out.SessionsCompleted)
	assert.EqualValues(t, 1, out.SessionsCancelled)
}

func TestPatientStats(t *testing.T) {
	patientID := uuid.New()
	repo := &fakeRepo{
		sessions: []session{
			{patientID: patientID, status: SessionScheduled},
			{patientID: patientID, status: SessionCompleted},
			{patientID: patientID, status: SessionCompleted},
			{patientID: patientID, status: SessionCancelled},
			{patientID: uuid.New(), status: SessionScheduled},
		},
	}
	svc := NewService(repo)

	out, err := svc.PatientStats(context.Background(), patientID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, out.UpcomingSessions)
	assert.EqualValues(t, 2, out.CompletedSessions)
}

func TestPatientStatsUnknownID(t *testing.T) {
	svc := NewService(&fakeRepo{})

	out, err := svc.PatientStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, out.UpcomingSessions)
	assert.Zero(t, out.CompletedSessions)
}

func TestTherapistStats(t *testing.T) {
	therapistID := uuid.New()
	patientA := uuid.New()
	patientB := uuid.New()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	repo := &fakeRepo{
		sessions: []session{
			{patientID: patientA, therapistID: therapistID, status: SessionScheduled, scheduledAt: today},
			{patientID: patientB, therapistID: therapistID, status: SessionScheduled, scheduledAt: today.Add(2 * time.Hour)},
			{patientID: patientA, therapistID: therapistID, status: SessionCompleted, scheduledAt: yesterday},
			{patientID: patientA, therapistID: therapistID, status: SessionScheduled, scheduledAt: tomorrow},
			{patientID: patientA, therapistID: uuid.New(), status: SessionScheduled, scheduledAt: today},
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	out, err := svc.TherapistStats(context.Background(), therapistID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, out.SessionsToday)
	assert.EqualValues(t, 2, out.DistinctPatients)
}
