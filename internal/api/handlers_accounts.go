package api

import (
	"encoding/json"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/psicoasis/oasis-backend/internal/identity"
)

func registerHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var kind identity.AccountKind
		switch req.Type {
		case accountTypePatient:
			kind = identity.KindPatient
		case accountTypeTherapist:
			kind = identity.KindTherapist
		default:
			writeError(w, http.StatusBadRequest, "invalid_account_type", "type must be patient or therapist")
			return
		}

		account, err := svc.Register(r.Context(), identity.RegisterInput{
			Kind:        kind,
			Email:       req.Email,
			Name:        req.Name,
			Profile:     req.Profile,
			License:     req.License,
			Bio:         req.Bio,
			Specialties: req.Specialties,
			PhotoURL:    req.PhotoURL,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, accountResponse(account))
	}
}

func getAccountHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_account_id", "id must be a valid UUID")
			return
		}

		account, err := svc.ResolveByID(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, accountResponse(account))
	}
}

func findAccountHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			writeError(w, http.StatusBadRequest, "missing_email", "email query parameter is required")
			return
		}

		account, err := svc.ResolveByEmail(r.Context(), email)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, accountResponse(account))
	}
}

// listPublicTherapistsHandler returns the approved therapist directory in a
// random order so the listing does not always favor the same profiles.
func listPublicTherapistsHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		therapists, err := svc.ListApprovedTherapists(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		rand.Shuffle(len(therapists), func(i, j int) {
			therapists[i], therapists[j] = therapists[j], therapists[i]
		})

		resp := make([]AccountResponse, 0, len(therapists))
		for i := range therapists {
			resp = append(resp, publicTherapistResponse(&therapists[i]))
		}

		writeJSON(w, http.StatusOK, map[string]any{"therapists": resp})
	}
}

func accountResponse(a identity.Account) AccountResponse {
	if a.Kind == identity.KindPatient {
		p := a.Patient
		name := ""
		if p.Name != nil {
			name = *p.Name
		}
		return AccountResponse{
			ID:        p.ID,
			Email:     p.Email,
			Name:      name,
			Type:      accountTypePatient,
			Role:      string(p.Role),
			Profile:   p.Profile,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
	}

	t := a.Therapist
	approved := t.Approved
	canPost := t.CanPostBlog
	return AccountResponse{
		ID:          t.ID,
		Email:       t.Email,
		Name:        t.Name,
		Type:        accountTypeTherapist,
		License:     t.License,
		Bio:         t.Bio,
		Specialties: t.Specialties,
		PhotoURL:    t.PhotoURL,
		Approved:    &approved,
		CanPostBlog: &canPost,
		Profile:     t.Profile,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// publicTherapistResponse omits moderation flags and the raw profile from
// the public directory.
func publicTherapistResponse(t *identity.Therapist) AccountResponse {
	return AccountResponse{
		ID:          t.ID,
		Email:       t.Email,
		Name:        t.Name,
		Type:        accountTypeTherapist,
		Bio:         t.Bio,
		Specialties: t.Specialties,
		PhotoURL:    t.PhotoURL,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
