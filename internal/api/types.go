package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	accountTypePatient   = "patient"
	accountTypeTherapist = "therapist"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type RegisterRequest struct {
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Type        string          `json:"type"` // patient | therapist
	Profile     json.RawMessage `json:"profile,omitempty"`
	License     *string         `json:"license,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Specialties []string        `json:"specialties,omitempty"`
	PhotoURL    *string         `json:"photo_url,omitempty"`
}

type AccountResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Role        string          `json:"role,omitempty"`
	License     *string         `json:"license,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Specialties []string        `json:"specialties,omitempty"`
	PhotoURL    *string         `json:"photo_url,omitempty"`
	Approved    *bool           `json:"approved,omitempty"`
	CanPostBlog *bool           `json:"can_post_blog,omitempty"`
	Profile     json.RawMessage `json:"profile,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type UpdateAccountRequest struct {
	ActorRequest
	Name        *string         `json:"name,omitempty"`
	Email       *string         `json:"email,omitempty"`
	Role        *string         `json:"role,omitempty"`
	Profile     json.RawMessage `json:"profile,omitempty"`
	License     *string         `json:"license,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Specialties []string        `json:"specialties,omitempty"`
	PhotoURL    *string         `json:"photo_url,omitempty"`
}

// ActorRequest carries the acting identity on mutation bodies. GET requests
// use the X-Actor-User-ID / X-Actor-Therapist-ID headers instead.
type ActorRequest struct {
	ActorUserID      *string `json:"actor_user_id,omitempty"`
	ActorTherapistID *string `json:"actor_therapist_id,omitempty"`
}

type ResetResponse struct {
	DeletedPatients   int64 `json:"deleted_patients"`
	DeletedTherapists int64 `json:"deleted_therapists"`
}

type CreatePostRequest struct {
	ActorRequest
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Excerpt         *string `json:"excerpt,omitempty"`
	CoverImage      *string `json:"cover_image,omitempty"`
	Category        *string `json:"category,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	Published       bool    `json:"published"`
}

type UpdatePostRequest struct {
	ActorRequest
	Title           *string `json:"title,omitempty"`
	Content         *string `json:"content,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	CoverImage      *string `json:"cover_image,omitempty"`
	Category        *string `json:"category,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	Published       *bool   `json:"published,omitempty"`
}

type PostResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	CoverImage      *string    `json:"cover_image,omitempty"`
	Category        *string    `json:"category,omitempty"`
	MetaTitle       *string    `json:"meta_title,omitempty"`
	MetaDescription *string    `json:"meta_description,omitempty"`
	Keywords        *string    `json:"keywords,omitempty"`
	Status          string     `json:"status"` // draft | published
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	AuthorName      string     `json:"author,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type PostSummaryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorName  string     `json:"author"`
}

type AdminStatsResponse struct {
	Patients                int64 `json:"patients"`
	PatientsExcludingAdmins int64 `json:"patients_excluding_admins"`
	Therapists              int64 `json:"therapists"`
	Posts                   int64 `json:"posts"`
	PublishedPosts          int64 `json:"published_posts"`
	Sessions                int64 `json:"sessions"`
	SessionsScheduled       int64 `json:"sessions_scheduled"`
	SessionsCompleted       int64 `json:"sessions_completed"`
	SessionsCancelled       int64 `json:"sessions_cancelled"`
}

type PatientStatsResponse struct {
	UpcomingSessions  int64 `json:"upcoming_sessions"`
	CompletedSessions int64 `json:"completed_sessions"`
}

type TherapistStatsResponse struct {
	SessionsToday    int64 `json:"sessions_today"`
	DistinctPatients int64 `json:"distinct_patients"`
}
