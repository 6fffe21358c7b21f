package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrBlogNotFound       = errors.New("blog not found")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSlugSpaceExhausted = errors.New("could not find a free slug within the attempt bound")
)

// Repository contains all DB interactions needed by the content service.
// CreatePost and UpdatePost map unique-constraint violations on slug to
// ErrDuplicateSlug so the service can retry with the next suffix.
type Repository interface {
	GetDefaultBlog(ctx context.Context) (*Blog, error)
	CreateBlog(ctx context.Context, b *Blog) error

	CreatePost(ctx context.Context, p *Post) error
	GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	// SlugExists reports whether any post other than excludeID holds slug.
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	// AuthorName resolves a display name for listings.
	AuthorName(ctx context.Context, ref AuthorRef) (string, error)

	ListPublished(ctx context.Context, category *string) ([]PostSummary, error)
	ListAll(ctx context.Context) ([]PostSummary, error)
}
