package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psicoasis/oasis-backend/internal/identity"
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

// authorColumns splits the tagged union into the two nullable FK columns.
func authorColumns(ref AuthorRef) (userID, therapistID *uuid.UUID) {
	id := ref.ID
	switch ref.Kind {
	case identity.KindPatient:
		return &id, nil
	case identity.KindTherapist:
		return nil, &id
	}
	return nil, nil
}

func authorRef(userID, therapistID *uuid.UUID) (AuthorRef, error) {
	switch {
	case userID != nil && therapistID == nil:
		return AuthorRef{Kind: identity.KindPatient, ID: *userID}, nil
	case therapistID != nil && userID == nil:
		return AuthorRef{Kind: identity.KindTherapist, ID: *therapistID}, nil
	}
	return AuthorRef{}, fmt.Errorf("post has invalid author columns")
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	var authorUserID, authorTherapistID *uuid.UUID

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Excerpt,
		&p.CoverImage,
		&p.Category,
		&p.MetaTitle,
		&p.MetaDescription,
		&p.Keywords,
		&p.Published,
		&p.PublishedAt,
		&p.FirstPublishedAt,
		&authorUserID,
		&authorTherapistID,
		&p.BlogID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	p.Author, err = authorRef(authorUserID, authorTherapistID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

const postColumns = `id, title, slug, content, excerpt, cover_image, category,
	meta_title, meta_description, keywords, published, published_at,
	first_published_at, author_user_id, author_therapist_id, blog_id,
	created_at, updated_at`

// Interface methods

func (r *PgRepository) GetDefaultBlog(ctx context.Context) (*Blog, error) {
	var b Blog
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, created_at
		FROM blogs
		ORDER BY created_at
		LIMIT 1
	`).Scan(&b.ID, &b.Title, &b.Description, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *PgRepository) CreateBlog(ctx context.Context, b *Blog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blogs (id, title, description, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at
	`, b.ID, b.Title, b.Description)

	return row.Scan(&b.CreatedAt)
}

func (r *PgRepository) CreatePost(ctx context.Context, p *Post) error {
	authorUserID, authorTherapistID := authorColumns(p.Author)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (
			id, title, slug, content, excerpt, cover_image, category,
			meta_title, meta_description, keywords, published, published_at,
			first_published_at, author_user_id, author_therapist_id, blog_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.Category,
		p.MetaTitle, p.MetaDescription, p.Keywords, p.Published, p.PublishedAt,
		p.FirstPublishedAt, authorUserID, authorTherapistID, p.BlogID)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	return nil
}

func (r *PgRepository) GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE id = $1
	`, id)
	return scanPost(row)
}

func (r *PgRepository) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE slug = $1
	`, slug)
	return scanPost(row)
}

func (r *PgRepository) UpdatePost(ctx context.Context, p *Post) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $2, slug = $3, content = $4, excerpt = $5, cover_image = $6,
			category = $7, meta_title = $8, meta_description = $9, keywords = $10,
			published = $11, published_at = $12, first_published_at = $13,
			updated_at = now()
		WHERE id = $1
	`, p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.Category,
		p.MetaTitle, p.MetaDescription, p.Keywords, p.Published, p.PublishedAt,
		p.FirstPublishedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *PgRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *PgRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM posts WHERE slug = $1 AND id <> $2
		)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *PgRepository) AuthorName(ctx context.Context, ref AuthorRef) (string, error) {
	var name *string
	var err error

	switch ref.Kind {
	case identity.KindPatient:
		err = r.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, ref.ID).Scan(&name)
	case identity.KindTherapist:
		err = r.pool.QueryRow(ctx, `SELECT name FROM therapists WHERE id = $1`, ref.ID).Scan(&name)
	default:
		return "", fmt.Errorf("invalid author kind %q", ref.Kind)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if name == nil {
		return "", nil
	}

	return *name, nil
}

const summaryQuery = `
	SELECT p.id, p.title, p.slug, p.excerpt, p.cover_image, p.category,
		p.published, p.published_at,
		COALESCE(u.name, t.name, '') AS author_name
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_user_id
	LEFT JOIN therapists t ON t.id = p.author_therapist_id
`

func (r *PgRepository) ListPublished(ctx context.Context, category *string) ([]PostSummary, error) {
	query := summaryQuery + ` WHERE p.published`
	args := []any{}
	if category != nil {
		query += ` AND p.category = $1`
		args = append(args, *category)
	}
	query += ` ORDER BY p.published_at DESC`

	return r.listSummaries(ctx, query, args...)
}

func (r *PgRepository) ListAll(ctx context.Context) ([]PostSummary, error) {
	return r.listSummaries(ctx, summaryQuery+` ORDER BY p.created_at DESC`)
}

func (r *PgRepository) listSummaries(ctx context.Context, query string, args ...any) ([]PostSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []PostSummary
	for rows.Next() {
		var s PostSummary
		err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Slug,
			&s.Excerpt,
			&s.CoverImage,
			&s.Category,
			&s.Published,
			&s.PublishedAt,
			&s.AuthorName,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
