package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/identity"
)

func createPostHandler(identitySvc *identity.Service, contentSvc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor, err := resolveActor(r, identitySvc, req.ActorRequest)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		post, err := contentSvc.CreatePost(r.Context(), actor, content.CreatePostInput{
			Title:           req.Title,
			Content:         req.Content,
			Excerpt:         req.Excerpt,
			CoverImage:      req.CoverImage,
			Category:        req.Category,
			MetaTitle:       req.MetaTitle,
			MetaDescription: req.MetaDescription,
			Keywords:        req.Keywords,
			Published:       req.Published,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, postResponse(post, ""))
	}
}

func updatePostHandler(identitySvc *identity.Service, contentSvc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor, err := resolveActor(r, identitySvc, req.ActorRequest)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		post, err := contentSvc.UpdatePost(r.Context(), actor, chi.URLParam(r, "idOrSlug"), content.UpdatePostInput{
			Title:           req.Title,
			Content:         req.Content,
			Excerpt:         req.Excerpt,
			CoverImage:      req.CoverImage,
			Category:        req.Category,
			MetaTitle:       req.MetaTitle,
			MetaDescription: req.MetaDescription,
			Keywords:        req.Keywords,
			Published:       req.Published,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, postResponse(post, ""))
	}
}

func deletePostHandler(identitySvc *identity.Service, contentSvc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, identitySvc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := contentSvc.DeletePost(r.Context(), actor, chi.URLParam(r, "idOrSlug")); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// getPostHandler returns the public view for published posts and the edit
// view (with body and SEO fields) for drafts the actor may mutate.
func getPostHandler(identitySvc *identity.Service, contentSvc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, identitySvc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		post, authorName, err := contentSvc.GetPost(r.Context(), actor, chi.URLParam(r, "idOrSlug"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, postResponse(post, authorName))
	}
}

func listPublishedPostsHandler(svc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category *string
		if c := r.URL.Query().Get("category"); c != "" && c != "all" {
			category = &c
		}

		summaries, err := svc.ListPublished(r.Context(), category)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"posts": summaryResponses(summaries)})
	}
}

func listAllPostsHandler(identitySvc *identity.Service, contentSvc *content.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, identitySvc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		summaries, err := contentSvc.ListAll(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"posts": summaryResponses(summaries)})
	}
}

func postStatus(published bool) string {
	if published {
		return "published"
	}
	return "draft"
}

func postResponse(p *content.Post, authorName string) PostResponse {
	return PostResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		CoverImage:      p.CoverImage,
		Category:        p.Category,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Keywords:        p.Keywords,
		Status:          postStatus(p.Published),
		PublishedAt:     p.PublishedAt,
		AuthorName:      authorName,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func summaryResponses(summaries []content.PostSummary) []PostSummaryResponse {
	resp := make([]PostSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, PostSummaryResponse{
			ID:          s.ID,
			Title:       s.Title,
			Slug:        s.Slug,
			Excerpt:     s.Excerpt,
			CoverImage:  s.CoverImage,
			Category:    s.Category,
			Status:      postStatus(s.Published),
			PublishedAt: s.PublishedAt,
			AuthorName:  s.AuthorName,
		})
	}
	return resp
}
