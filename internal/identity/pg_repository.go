package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.Role,
		&p.Profile,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanTherapist(row pgx.Row) (*Therapist, error) {
	var t Therapist

	err := row.Scan(
		&t.ID,
		&t.Email,
		&t.Name,
		&t.License,
		&t.Bio,
		&t.Specialties,
		&t.PhotoURL,
		&t.Approved,
		&t.CanPostBlog,
		&t.Profile,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTherapistNotFound
		}
		return nil, err
	}

	return &t, nil
}

const patientColumns = `id, email, name, role, profile, created_at, updated_at`

const therapistColumns = `id, email, name, license, bio, specialties, photo_url,
	approved, can_post_blog, profile, created_at, updated_at`

// Interface methods

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Email, p.Name, p.Role, p.Profile)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *PgRepository) CreateTherapist(ctx context.Context, t *Therapist) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO therapists (
			id, email, name, license, bio, specialties, photo_url,
			approved, can_post_blog, profile, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at
	`, t.ID, t.Email, t.Name, t.License, t.Bio, t.Specialties, t.PhotoURL,
		t.Approved, t.CanPostBlog, t.Profile)

	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetTherapistByID(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE id = $1
	`, id)
	return scanTherapist(row)
}

func (r *PgRepository) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanPatient(row)
}

func (r *PgRepository) GetTherapistByEmail(ctx context.Context, email string) (*Therapist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE email = $1
	`, email)
	return scanTherapist(row)
}

func (r *PgRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}

	return patients, rows.Err()
}

func (r *PgRepository) ListTherapists(ctx context.Context) ([]Therapist, error) {
	return r.listTherapists(ctx, false)
}

func (r *PgRepository) ListApprovedTherapists(ctx context.Context) ([]Therapist, error) {
	return r.listTherapists(ctx, true)
}

func (r *PgRepository) listTherapists(ctx context.Context, approvedOnly bool) ([]Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		FROM therapists
	`
	if approvedOnly {
		query += ` WHERE approved`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var therapists []Therapist
	for rows.Next() {
		t, err := scanTherapist(rows)
		if err != nil {
			return nil, err
		}
		therapists = append(therapists, *t)
	}

	return therapists, rows.Err()
}

func (r *PgRepository) UpdatePatient(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4, profile = $5, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Email, p.Name, p.Role, p.Profile)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	return nil
}

func (r *PgRepository) UpdateTherapist(ctx context.Context, t *Therapist) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE therapists
		SET email = $2, name = $3, license = $4, bio = $5, specialties = $6,
			photo_url = $7, profile = $8, updated_at = now()
		WHERE id = $1
	`, t.ID, t.Email, t.Name, t.License, t.Bio, t.Specialties, t.PhotoURL, t.Profile)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTherapistNotFound
	}

	return nil
}

func (r *PgRepository) SetTherapistApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE therapists
		SET approved = $2, updated_at = now()
		WHERE id = $1
	`, id, approved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTherapistNotFound
	}

	return nil
}

func (r *PgRepository) SetTherapistBlogAuthorization(ctx context.Context, id uuid.UUID, canPost bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE therapists
		SET can_post_blog = $2, updated_at = now()
		WHERE id = $1
	`, id, canPost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTherapistNotFound
	}

	return nil
}

func (r *PgRepository) SetPatientRole(ctx context.Context, id uuid.UUID, role Role) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE id = $1
	`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	return nil
}

func (r *PgRepository) DeletePatient(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	return nil
}

func (r *PgRepository) DeleteTherapist(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM therapists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTherapistNotFound
	}

	return nil
}

func (r *PgRepository) DeleteAllExcept(ctx context.Context, keepEmail string) (int64, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	userTag, err := tx.Exec(ctx, `DELETE FROM users WHERE email <> $1`, keepEmail)
	if err != nil {
		return 0, 0, err
	}

	therapistTag, err := tx.Exec(ctx, `DELETE FROM therapists WHERE email <> $1`, keepEmail)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}

	return userTag.RowsAffected(), therapistTag.RowsAffected(), nil
}
