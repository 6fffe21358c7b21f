package content

import (
	"time"

	"github.com/google/uuid"

	"github.com/psicoasis/oasis-backend/internal/identity"
)

// AuthorRef is the tagged union identifying a post author. At the storage
// edge it maps to two nullable columns with exactly one set; everywhere else
// the union makes the invariant impossible to violate.
type AuthorRef struct {
	Kind identity.AccountKind
	ID   uuid.UUID
}

type Post struct {
	ID              uuid.UUID
	Title           string
	Slug            string
	Content         string
	Excerpt         *string
	CoverImage      *string
	Category        *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        *string
	Published       bool
	// PublishedAt is non-nil exactly when Published is true.
	PublishedAt *time.Time
	// FirstPublishedAt survives unpublish so that republishing restores the
	// original publication date.
	FirstPublishedAt *time.Time
	Author           AuthorRef
	BlogID           uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PostSummary is the listing shape: no body, author resolved to a name.
type PostSummary struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Excerpt     *string
	CoverImage  *string
	Category    *string
	Published   bool
	PublishedAt *time.Time
	AuthorName  string
}

type Blog struct {
	ID          uuid.UUID
	Title       string
	Description string
	CreatedAt   time.Time
}
