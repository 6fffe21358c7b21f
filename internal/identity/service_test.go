package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psicoasis/oasis-backend/internal/audit"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

// fakeRepo is an in-memory Repository. Each table enforces its own email
// uniqueness the way the real constraint does; cross-table checks stay the
// service's job.
type fakeRepo struct {
	patients   map[uuid.UUID]*Patient
	therapists map[uuid.UUID]*Therapist
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients:   make(map[uuid.UUID]*Patient),
		therapists: make(map[uuid.UUID]*Therapist),
	}
}

func (r *fakeRepo) CreatePatient(ctx context.Context, p *Patient) error {
	for _, existing := range r.patients {
		if existing.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakeRepo) CreateTherapist(ctx context.Context, t *Therapist) error {
	for _, existing := range r.therapists {
		if existing.Email == t.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *t
	r.therapists[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetTherapistByID(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	t, ok := r.therapists[id]
	if !ok {
		return nil, ErrTherapistNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	for _, p := range r.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *fakeRepo) GetTherapistByEmail(ctx context.Context, email string) (*Therapist, error) {
	for _, t := range r.therapists {
		if t.Email == email {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTherapistNotFound
}

func (r *fakeRepo) ListPatients(ctx context.Context) ([]Patient, error) {
	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) ListTherapists(ctx context.Context) ([]Therapist, error) {
	out := make([]Therapist, 0, len(r.therapists))
	for _, t := range r.therapists {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeRepo) ListApprovedTherapists(ctx context.Context) ([]Therapist, error) {
	var out []Therapist
	for _, t := range r.therapists {
		if t.Approved {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdatePatient(ctx context.Context, p *Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateTherapist(ctx context.Context, t *Therapist) error {
	if _, ok := r.therapists[t.ID]; !ok {
		return ErrTherapistNotFound
	}
	cp := *t
	r.therapists[t.ID] = &cp
	return nil
}

func (r *fakeRepo) SetTherapistApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	t, ok := r.therapists[id]
	if !ok {
		return ErrTherapistNotFound
	}
	t.Approved = approved
	return nil
}

func (r *fakeRepo) SetTherapistBlogAuthorization(ctx context.Context, id uuid.UUID, canPost bool) error {
	t, ok := r.therapists[id]
	if !ok {
		return ErrTherapistNotFound
	}
	t.CanPostBlog = canPost
	return nil
}

func (r *fakeRepo) SetPatientRole(ctx context.Context, id uuid.UUID, role Role) error {
	p, ok := r.patients[id]
	if !ok {
		return ErrPatientNotFound
	}
	p.Role = role
	return nil
}

func (r *fakeRepo) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *fakeRepo) DeleteTherapist(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.therapists[id]; !ok {
		return ErrTherapistNotFound
	}
	delete(r.therapists, id)
	return nil
}

func (r *fakeRepo) DeleteAllExcept(ctx context.Context, keepEmail string) (int64, int64, error) {
	var patients, therapists int64
	for id, p := range r.patients {
		if p.Email != keepEmail {
			delete(r.patients, id)
			patients++
		}
	}
	for id, t := range r.therapists {
		if t.Email != keepEmail {
			delete(r.therapists, id)
			therapists++
		}
	}
	return patients, therapists, nil
}

type captureRecorder struct {
	events []audit.Event
}

func (c *captureRecorder) Record(ctx context.Context, ev audit.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func newTestService() (*Service, *fakeRepo, *captureRecorder) {
	repo := newFakeRepo()
	rec := &captureRecorder{}
	return NewService(repo, rec), repo, rec
}

func adminActor() Actor {
	return Actor{Kind: KindPatient, ID: uuid.New(), Role: RoleAdmin}
}

func mustRegisterPatient(t *testing.T, svc *Service, email string) *Patient {
	t.Helper()
	acc, err := svc.Register(context.Background(), RegisterInput{
		Kind: KindPatient, Email: email, Name: "Paciente Teste",
	})
	require.NoError(t, err)
	return acc.Patient
}

func mustRegisterTherapist(t *testing.T, svc *Service, email string) *Therapist {
	t.Helper()
	acc, err := svc.Register(context.Background(), RegisterInput{
		Kind: KindTherapist, Email: email, Name: "Terapeuta Teste",
	})
	require.NoError(t, err)
	return acc.Therapist
}

func TestRegisterPatient(t *testing.T) {
	svc, _, _ := newTestService()

	acc, err := svc.Register(context.Background(), RegisterInput{
		Kind:  KindPatient,
		Email: "  Ana@Exemplo.COM ",
		Name:  "Ana Maria",
	})
	require.NoError(t, err)

	require.Equal(t, KindPatient, acc.Kind)
	assert.Equal(t, "ana@exemplo.com", acc.Patient.Email)
	assert.Equal(t, RoleUser, acc.Patient.Role)
	require.NotNil(t, acc.Patient.Name)
	assert.Equal(t, "Ana Maria", *acc.Patient.Name)
}

func TestRegisterTherapistStartsLocked(t *testing.T) {
	svc, _, _ := newTestService()

	acc, err := svc.Register(context.Background(), RegisterInput{
		Kind:  KindTherapist,
		Email: "dra@exemplo.com",
		Name:  "Dra. Beatriz",
	})
	require.NoError(t, err)

	require.Equal(t, KindTherapist, acc.Kind)
	assert.False(t, acc.Therapist.Approved)
	assert.False(t, acc.Therapist.CanPostBlog)
	assert.NotNil(t, acc.Therapist.Specialties)
	assert.Empty(t, acc.Therapist.Specialties)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var vErr *validate.Error

	_, err := svc.Register(ctx, RegisterInput{Kind: KindPatient, Email: "invalida", Name: "Ana"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	_, err = svc.Register(ctx, RegisterInput{Kind: KindPatient, Email: "ana@exemplo.com", Name: "A"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)

	_, err = svc.Register(ctx, RegisterInput{Kind: "clinic", Email: "ana@exemplo.com", Name: "Ana"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Field)
}

func TestRegisterDuplicateEmailAcrossTables(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mustRegisterTherapist(t, svc, "mesma@exemplo.com")

	// A patient cannot reuse an email held by a therapist.
	_, err := svc.Register(ctx, RegisterInput{Kind: KindPatient, Email: "mesma@exemplo.com", Name: "Ana"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Case differences do not dodge the check.
	_, err = svc.Register(ctx, RegisterInput{Kind: KindTherapist, Email: "MESMA@exemplo.com", Name: "Dra. Clara"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestResolveByID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := mustRegisterPatient(t, svc, "p@exemplo.com")
	th := mustRegisterTherapist(t, svc, "t@exemplo.com")

	acc, err := svc.ResolveByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, KindPatient, acc.Kind)

	acc, err = svc.ResolveByID(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, KindTherapist, acc.Kind)

	_, err = svc.ResolveByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolveByEmailAmbiguous(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	// Force the broken state directly: the same email in both tables.
	name := "Dupla"
	pID, tID := uuid.New(), uuid.New()
	repo.patients[pID] = &Patient{ID: pID, Email: "dupla@exemplo.com", Name: &name, Role: RoleUser}
	repo.therapists[tID] = &Therapist{ID: tID, Email: "dupla@exemplo.com", Name: "Dupla"}

	_, err := svc.ResolveByEmail(ctx, "dupla@exemplo.com")
	assert.ErrorIs(t, err, ErrAmbiguousIdentity)
}

func TestResolveActor(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := mustRegisterPatient(t, svc, "p@exemplo.com")
	th := mustRegisterTherapist(t, svc, "t@exemplo.com")
	repo.therapists[th.ID].CanPostBlog = true

	actor, err := svc.ResolveActor(ctx, &p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, KindPatient, actor.Kind)
	assert.Equal(t, p.ID, actor.ID)

	actor, err = svc.ResolveActor(ctx, nil, &th.ID)
	require.NoError(t, err)
	assert.Equal(t, KindTherapist, actor.Kind)
	assert.True(t, actor.CanPostBlog)

	// Unknown IDs resolve to the zero Actor, not an error.
	unknown := uuid.New()
	actor, err = svc.ResolveActor(ctx, &unknown, nil)
	require.NoError(t, err)
	assert.Equal(t, Actor{}, actor)

	actor, err = svc.ResolveActor(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Actor{}, actor)
	assert.False(t, actor.IsAdmin())
}

func TestSetTherapistApproval(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	th := mustRegisterTherapist(t, svc, "t@exemplo.com")

	err := svc.SetTherapistApproval(ctx, Actor{}, th.ID, true)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	admin := adminActor()
	require.NoError(t, svc.SetTherapistApproval(ctx, admin, th.ID, true))
	assert.True(t, repo.therapists[th.ID].Approved)

	// Idempotent.
	require.NoError(t, svc.SetTherapistApproval(ctx, admin, th.ID, true))

	require.NoError(t, svc.SetTherapistApproval(ctx, admin, th.ID, false))
	assert.False(t, repo.therapists[th.ID].Approved)

	require.Len(t, rec.events, 3)
	assert.Equal(t, audit.EventTherapistApproved, rec.events[0].Type)
	assert.Equal(t, audit.EventTherapistRejected, rec.events[2].Type)
}

func TestSetTherapistBlogAuthorization(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	th := mustRegisterTherapist(t, svc, "t@exemplo.com")
	admin := adminActor()

	require.NoError(t, svc.SetTherapistBlogAuthorization(ctx, admin, th.ID, true))
	assert.True(t, repo.therapists[th.ID].CanPostBlog)
	// Blog access does not imply listing approval.
	assert.False(t, repo.therapists[th.ID].Approved)

	require.NoError(t, svc.SetTherapistBlogAuthorization(ctx, admin, th.ID, false))
	assert.False(t, repo.therapists[th.ID].CanPostBlog)

	require.Len(t, rec.events, 2)
	assert.Equal(t, audit.EventBlogAuthorized, rec.events[0].Type)
	assert.Equal(t, audit.EventBlogRevoked, rec.events[1].Type)
}

func TestSetRole(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()
	admin := adminActor()

	p := mustRegisterPatient(t, svc, "p@exemplo.com")
	th := mustRegisterTherapist(t, svc, "t@exemplo.com")

	err := svc.SetRole(ctx, Actor{}, p.ID, RoleAdmin)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Therapists hold no role.
	err = svc.SetRole(ctx, admin, th.ID, RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	var vErr *validate.Error
	err = svc.SetRole(ctx, admin, p.ID, Role("SUPERUSER"))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "role", vErr.Field)

	require.NoError(t, svc.SetRole(ctx, admin, p.ID, RoleAdmin))
	assert.Equal(t, RoleAdmin, repo.patients[p.ID].Role)
	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.EventRoleChanged, rec.events[0].Type)

	// Admins are never demoted through this path.
	err = svc.SetRole(ctx, admin, p.ID, RoleUser)
	assert.ErrorIs(t, err, ErrProtectedAccount)

	// Same role is a no-op and records nothing.
	require.NoError(t, svc.SetRole(ctx, admin, p.ID, RoleAdmin))
	assert.Len(t, rec.events, 1)
}

func TestUpdateAccount(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := mustRegisterPatient(t, svc, "p@exemplo.com")
	other := mustRegisterPatient(t, svc, "outra@exemplo.com")

	newName := "Novo Nome"

	// A stranger cannot edit someone else's account.
	otherActor := Actor{Kind: KindPatient, ID: other.ID, Role: RoleUser}
	_, err := svc.UpdateAccount(ctx, otherActor, p.ID, UpdateInput{Name: &newName})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// The account itself can.
	self := Actor{Kind: KindPatient, ID: p.ID, Role: RoleUser}
	_, err = svc.UpdateAccount(ctx, self, p.ID, UpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, *repo.patients[p.ID].Name)

	// Email changes revalidate and recheck uniqueness across both tables.
	taken := "outra@exemplo.com"
	_, err = svc.UpdateAccount(ctx, self, p.ID, UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	fresh := " Nova@Exemplo.com "
	_, err = svc.UpdateAccount(ctx, self, p.ID, UpdateInput{Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, "nova@exemplo.com", repo.patients[p.ID].Email)
}

func TestUpdateTherapistFields(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	th := mustRegisterTherapist(t, svc, "t@exemplo.com")
	self := Actor{Kind: KindTherapist, ID: th.ID}

	bio := "Atendo crianças superdotadas."
	specs := []string{"Superdotação", "Ansiedade"}
	_, err := svc.UpdateAccount(ctx, self, th.ID, UpdateInput{Bio: &bio, Specialties: specs})
	require.NoError(t, err)

	stored := repo.therapists[th.ID]
	assert.Equal(t, bio, *stored.Bio)
	assert.Equal(t, specs, stored.Specialties)
	// Flags never move through profile updates.
	assert.False(t, stored.Approved)
	assert.False(t, stored.CanPostBlog)
}

func TestDelete(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()
	admin := adminActor()

	p := mustRegisterPatient(t, svc, "p@exemplo.com")
	th := mustRegisterTherapist(t, svc, "t@exemplo.com")

	err := svc.Delete(ctx, Actor{Kind: KindPatient, ID: p.ID, Role: RoleUser}, th.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Delete(ctx, admin, th.ID))
	assert.Empty(t, repo.therapists)

	// Admin accounts are protected.
	require.NoError(t, svc.SetRole(ctx, admin, p.ID, RoleAdmin))
	err = svc.Delete(ctx, admin, p.ID)
	assert.ErrorIs(t, err, ErrProtectedAccount)

	err = svc.Delete(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	require.NotEmpty(t, rec.events)
}

func TestListAccounts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mustRegisterPatient(t, svc, "p@exemplo.com")
	mustRegisterTherapist(t, svc, "t@exemplo.com")

	_, _, err := svc.ListAccounts(ctx, Actor{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	patients, therapists, err := svc.ListAccounts(ctx, adminActor())
	require.NoError(t, err)
	assert.Len(t, patients, 1)
	assert.Len(t, therapists, 1)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := repo.GetPatientByEmail(ctx, DefaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)

	// Second run finds it and does nothing.
	created, err = svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.patients, 1)

	// A demoted default admin is repaired.
	repo.patients[admin.ID].Role = RoleUser
	created, err = svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, RoleAdmin, repo.patients[admin.ID].Role)
}

func TestResetAccounts(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	_, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)

	mustRegisterPatient(t, svc, "p1@exemplo.com")
	mustRegisterPatient(t, svc, "p2@exemplo.com")
	mustRegisterTherapist(t, svc, "t1@exemplo.com")

	_, _, err = svc.ResetAccounts(ctx, Actor{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	patients, therapists, err := svc.ResetAccounts(ctx, adminActor())
	require.NoError(t, err)
	assert.EqualValues(t, 2, patients)
	assert.EqualValues(t, 1, therapists)

	// Only the default admin survives.
	require.Len(t, repo.patients, 1)
	assert.Empty(t, repo.therapists)
	admin, err := repo.GetPatientByEmail(ctx, DefaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)

	require.NotEmpty(t, rec.events)
	assert.Equal(t, audit.EventAccountsReset, rec.events[len(rec.events)-1].Type)
}
