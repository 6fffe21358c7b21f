package api

import (
	"net/http"

	"github.com/psicoasis/oasis-backend/internal/identity"
	"github.com/psicoasis/oasis-backend/internal/stats"
)

func adminStatsHandler(identitySvc *identity.Service, statsSvc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r, identitySvc, ActorRequest{})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !actor.IsAdmin() {
			writeDomainError(w, identity.ErrPermissionDenied)
			return
		}

		s, err := statsSvc.AdminStats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AdminStatsResponse{
			Patients:                s.Patients,
			PatientsExcludingAdmins: s.PatientsExcludingAdmins,
			Therapists:              s.Therapists,
			Posts:                   s.Posts,
			PublishedPosts:          s.PublishedPosts,
			Sessions:                s.Sessions,
			SessionsScheduled:       s.SessionsScheduled,
			SessionsCompleted:       s.SessionsCompleted,
			SessionsCancelled:       s.SessionsCancelled,
		})
	}
}

func patientStatsHandler(statsSvc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_patient_id")
		if !ok {
			return
		}

		s, err := statsSvc.PatientStats(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, PatientStatsResponse{
			UpcomingSessions:  s.UpcomingSessions,
			CompletedSessions: s.CompletedSessions,
		})
	}
}

func therapistStatsHandler(statsSvc *stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id", "invalid_therapist_id")
		if !ok {
			return
		}

		s, err := statsSvc.TherapistStats(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TherapistStatsResponse{
			SessionsToday:    s.SessionsToday,
			DistinctPatients: s.DistinctPatients,
		})
	}
}
