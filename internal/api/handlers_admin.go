package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/psicoasis/oasis-backend/internal/identity"
)

func listAccountsHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, svc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		patients, therapists, err := svc.ListAccounts(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		users := make([]AccountResponse, 0, len(patients)+len(therapists))
		for i := range patients {
			users = append(users, accountResponse(identity.Account{
				Kind:    identity.KindPatient,
				Patient: &patients[i],
			}))
		}
		for i := range therapists {
			users = append(users, accountResponse(identity.Account{
				Kind:      identity.KindTherapist,
				Therapist: &therapists[i],
			}))
		}

		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

func updateAccountHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_account_id")
		if !ok {
			return
		}

		var req UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor, err := resolveActor(r, svc, req.ActorRequest)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// Role changes go through the dedicated promotion path with its
		// protected-account rules; everything else is a profile edit.
		if req.Role != nil {
			if err := svc.SetRole(r.Context(), actor, id, identity.Role(*req.Role)); err != nil {
				writeDomainError(w, err)
				return
			}
		}

		account, err := svc.UpdateAccount(r.Context(), actor, id, identity.UpdateInput{
			Name:        req.Name,
			Email:       req.Email,
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

		writeJSON(w, http.StatusOK, accountResponse(account))
	}
}

func deleteAccountHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_account_id")
		if !ok {
			return
		}

		actor, err := resolveActor(r, svc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func resetAccountsHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, svc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		patients, therapists, err := svc.ResetAccounts(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ResetResponse{
			DeletedPatients:   patients,
			DeletedTherapists: therapists,
		})
	}
}

// setApprovalHandler serves both approve (POST) and reject (DELETE).
func setApprovalHandler(svc *identity.Service, approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_therapist_id")
		if !ok {
			return
		}

		actor, err := resolveActor(r, svc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := svc.SetTherapistApproval(r.Context(), actor, id, approved); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// setBlogAuthorizationHandler serves both authorize (POST) and revoke (DELETE).
func setBlogAuthorizationHandler(svc *identity.Service, canPost bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_therapist_id")
		if !ok {
			return
		}

		actor, err := resolveActor(r, svc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := svc.SetTherapistBlogAuthorization(r.Context(), actor, id, canPost); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, param, errCode string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, errCode, param+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
