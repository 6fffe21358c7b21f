package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/identity"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeDomainError maps the domain error taxonomy to HTTP. Anything
// unclassified is a storage-level failure: logged in full, surfaced as a
// generic 500 without internal detail.
func writeDomainError(w http.ResponseWriter, err error) {
	var vErr *validate.Error
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, "validation_error", vErr.Error())
		return
	}

	switch {
	case errors.Is(err, identity.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", "email is already registered")
	case errors.Is(err, content.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, "duplicate_slug", "slug is already in use")
	case errors.Is(err, identity.ErrAccountNotFound),
		errors.Is(err, identity.ErrPatientNotFound),
		errors.Is(err, identity.ErrTherapistNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", "account not found")
	case errors.Is(err, content.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
	case errors.Is(err, identity.ErrPermissionDenied),
		errors.Is(err, content.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission_denied", "you do not have permission for this operation")
	case errors.Is(err, identity.ErrProtectedAccount):
		writeError(w, http.StatusConflict, "protected_account", "admin accounts cannot be deleted or demoted")
	case errors.Is(err, identity.ErrInvalidOperation):
		writeError(w, http.StatusUnprocessableEntity, "invalid_operation", "operation not valid for this account variant")
	case errors.Is(err, identity.ErrAmbiguousIdentity):
		log.Printf("data integrity error: %v", err)
		writeError(w, http.StatusInternalServerError, "data_integrity_error", "account data is inconsistent")
	case errors.Is(err, content.ErrSlugSpaceExhausted):
		writeError(w, http.StatusConflict, "slug_exhausted", "could not derive a unique slug from this title")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}
