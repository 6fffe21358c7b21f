package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/psicoasis/oasis-backend/internal/identity"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

const (
	// slugAttemptLimit caps the suffix search; exceeding it is a hard error.
	slugAttemptLimit = 100

	defaultBlogTitle       = "Estudos do OASIS"
	defaultBlogDescription = "Blog do OASIS da Superdotação"
)

type Service struct {
	repo      Repository
	sanitizer *bluemonday.Policy
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

type CreatePostInput struct {
	Title           string
	Content         string
	Excerpt         *string
	CoverImage      *string
	Category        *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        *string
	Published       bool
}

// CreatePost creates a post authored by the actor, in draft or published
// state. The slug is derived from the title; on collision the smallest free
// numeric suffix is appended, retrying through insert-time races up to the
// bound.
func (s *Service) CreatePost(ctx context.Context, actor identity.Actor, in CreatePostInput) (*Post, error) {
	if !CanMutate(actor, nil) {
		return nil, ErrPermissionDenied
	}

	title := strings.TrimSpace(in.Title)
	if err := validate.Required("title", title); err != nil {
		return nil, err
	}
	if err := validate.Required("content", in.Content); err != nil {
		return nil, err
	}

	blog, err := s.EnsureDefaultBlog(ctx)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:              uuid.New(),
		Title:           title,
		Content:         s.sanitizer.Sanitize(in.Content),
		Excerpt:         trimOptional(in.Excerpt),
		CoverImage:      trimOptional(in.CoverImage),
		Category:        trimOptional(in.Category),
		MetaTitle:       trimOptional(in.MetaTitle),
		MetaDescription: trimOptional(in.MetaDescription),
		Keywords:        trimOptional(in.Keywords),
		Author:          AuthorRef{Kind: actor.Kind, ID: actor.ID},
		BlogID:          blog.ID,
	}

	if in.Published {
		now := time.Now().UTC()
		post.Published = true
		post.PublishedAt = &now
		post.FirstPublishedAt = &now
	}

	base := Slugify(title)
	if base == "" {
		base = "post"
	}

	for attempt := 0; attempt <= slugAttemptLimit; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		// Optimistic pre-check; the unique constraint on insert is the
		// authoritative signal and still triggers a retry on a race.
		taken, err := s.repo.SlugExists(ctx, candidate, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if taken {
			continue
		}

		post.Slug = candidate
		err = s.repo.CreatePost(ctx, post)
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return post, nil
	}

	return nil, ErrSlugSpaceExhausted
}

type UpdatePostInput struct {
	Title           *string
	Content         *string
	Excerpt         *string
	CoverImage      *string
	Category        *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        *string
	Published       *bool
}

// UpdatePost edits fields on a post the actor is allowed to mutate. Nil
// fields are left unchanged; optional metadata set to an empty string is
// cleared. Title edits recompute the slug only when the new slug is free or
// already belongs to this post; otherwise the old slug is kept and only the
// title changes.
func (s *Service) UpdatePost(ctx context.Context, actor identity.Actor, idOrSlug string, in UpdatePostInput) (*Post, error) {
	post, err := s.findPost(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if !CanMutate(actor, &post.Author) {
		return nil, ErrPermissionDenied
	}

	if in.Content != nil {
		if err := validate.Required("content", *in.Content); err != nil {
			return nil, err
		}
		post.Content = s.sanitizer.Sanitize(*in.Content)
	}
	applyOptional(&post.Excerpt, in.Excerpt)
	applyOptional(&post.CoverImage, in.CoverImage)
	applyOptional(&post.Category, in.Category)
	applyOptional(&post.MetaTitle, in.MetaTitle)
	applyOptional(&post.MetaDescription, in.MetaDescription)
	applyOptional(&post.Keywords, in.Keywords)

	if in.Published != nil {
		s.applyPublishTransition(post, *in.Published)
	}

	oldSlug := post.Slug
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validate.Required("title", title); err != nil {
			return nil, err
		}
		post.Title = title

		if newSlug := Slugify(title); newSlug != "" && newSlug != post.Slug {
			taken, err := s.repo.SlugExists(ctx, newSlug, post.ID)
			if err != nil {
				return nil, fmt.Errorf("check slug: %w", err)
			}
			if !taken {
				post.Slug = newSlug
			}
			// Taken by another post: the title updates, the slug stays.
		}
	}

	err = s.repo.UpdatePost(ctx, post)
	if errors.Is(err, ErrDuplicateSlug) && post.Slug != oldSlug {
		// Lost a race on the renamed slug; keep the old one.
		post.Slug = oldSlug
		err = s.repo.UpdatePost(ctx, post)
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

// applyPublishTransition implements the lifecycle rule: publishing stamps
// the first-publish time exactly once and republishing restores it;
// unpublishing always clears the visible timestamp.
func (s *Service) applyPublishTransition(post *Post, published bool) {
	if published {
		if post.FirstPublishedAt == nil {
			now := time.Now().UTC()
			post.FirstPublishedAt = &now
		}
		post.Published = true
		post.PublishedAt = post.FirstPublishedAt
		return
	}

	post.Published = false
	post.PublishedAt = nil
}

func (s *Service) DeletePost(ctx context.Context, actor identity.Actor, idOrSlug string) error {
	post, err := s.findPost(ctx, idOrSlug)
	if err != nil {
		return err
	}

	if !CanMutate(actor, &post.Author) {
		return ErrPermissionDenied
	}

	return s.repo.DeletePost(ctx, post.ID)
}

// GetPost returns a post by id or slug along with its author's display name.
// Drafts are only visible to actors allowed to mutate them; everyone else
// gets not-found rather than a hint that the draft exists.
func (s *Service) GetPost(ctx context.Context, actor identity.Actor, idOrSlug string) (*Post, string, error) {
	post, err := s.findPost(ctx, idOrSlug)
	if err != nil {
		return nil, "", err
	}

	if !post.Published && !CanMutate(actor, &post.Author) {
		return nil, "", ErrPostNotFound
	}

	name, err := s.repo.AuthorName(ctx, post.Author)
	if err != nil {
		return nil, "", fmt.Errorf("resolve author: %w", err)
	}

	return post, name, nil
}

// ListPublished returns published post summaries, newest publication first.
func (s *Service) ListPublished(ctx context.Context, category *string) ([]PostSummary, error) {
	return s.repo.ListPublished(ctx, category)
}

// ListAll returns every post including drafts, for the blog dashboard.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor) ([]PostSummary, error) {
	if !CanMutate(actor, nil) {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListAll(ctx)
}

// EnsureDefaultBlog returns the singleton blog, creating it if absent.
// Called from startup bootstrap and lazily on first post creation.
func (s *Service) EnsureDefaultBlog(ctx context.Context) (*Blog, error) {
	blog, err := s.repo.GetDefaultBlog(ctx)
	if err == nil {
		return blog, nil
	}
	if !errors.Is(err, ErrBlogNotFound) {
		return nil, fmt.Errorf("load blog: %w", err)
	}

	blog = &Blog{
		ID:          uuid.New(),
		Title:       defaultBlogTitle,
		Description: defaultBlogDescription,
	}
	if err := s.repo.CreateBlog(ctx, blog); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}

	return blog, nil
}

// findPost resolves an identifier that may be a post ID or a slug. UUIDs are
// tried as IDs first and fall back to slug lookup.
func (s *Service) findPost(ctx context.Context, idOrSlug string) (*Post, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, ErrPostNotFound
	}

	if id, err := uuid.Parse(idOrSlug); err == nil {
		post, err := s.repo.GetPostByID(ctx, id)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
	}

	return s.repo.GetPostBySlug(ctx, idOrSlug)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// applyOptional leaves dst alone when src is nil, clears it when src trims
// to empty, and replaces it otherwise.
func applyOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	*dst = trimOptional(src)
}
