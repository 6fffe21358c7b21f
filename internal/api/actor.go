package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/psicoasis/oasis-backend/internal/identity"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

const (
	actorUserHeader      = "X-Actor-User-ID"
	actorTherapistHeader = "X-Actor-Therapist-ID"
)

// resolveActor turns the request's actor identification into an identity
// descriptor. Body fields win over headers. Absent or unknown IDs yield the
// zero Actor, which every permission check denies; the services decide what
// that means per operation.
func resolveActor(r *http.Request, svc *identity.Service, body ActorRequest) (identity.Actor, error) {
	userRaw := body.ActorUserID
	therapistRaw := body.ActorTherapistID

	if userRaw == nil {
		if h := r.Header.Get(actorUserHeader); h != "" {
			userRaw = &h
		}
	}
	if therapistRaw == nil {
		if h := r.Header.Get(actorTherapistHeader); h != "" {
			therapistRaw = &h
		}
	}

	userID, err := parseOptionalUUID("actor_user_id", userRaw)
	if err != nil {
		return identity.Actor{}, err
	}
	therapistID, err := parseOptionalUUID("actor_therapist_id", therapistRaw)
	if err != nil {
		return identity.Actor{}, err
	}

	return svc.ResolveActor(r.Context(), userID, therapistID)
}

func parseOptionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, &validate.Error{Field: field, Reason: "must be a valid UUID"}
	}
	return &id, nil
}
