package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/identity"
	"github.com/psicoasis/oasis-backend/internal/validate"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &validate.Error{Field: "email", Reason: "is required"}, http.StatusBadRequest, "validation_error"},
		{"duplicate email", identity.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
		{"duplicate slug", content.ErrDuplicateSlug, http.StatusConflict, "duplicate_slug"},
		{"account not found", identity.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
		{"post not found", content.ErrPostNotFound, http.StatusNotFound, "post_not_found"},
		{"identity permission", identity.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"content permission", content.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"protected account", identity.ErrProtectedAccount, http.StatusConflict, "protected_account"},
		{"invalid operation", identity.ErrInvalidOperation, http.StatusUnprocessableEntity, "invalid_operation"},
		{"ambiguous identity", identity.ErrAmbiguousIdentity, http.StatusInternalServerError, "data_integrity_error"},
		{"slug exhausted", content.ErrSlugSpaceExhausted, http.StatusConflict, "slug_exhausted"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
		{"wrapped sentinel", fmt.Errorf("update post: %w", content.ErrPostNotFound), http.StatusNotFound, "post_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := parseOptionalUUID("actor_user_id", nil)
	require.NoError(t, err)
	assert.Nil(t, id)

	empty := ""
	id, err = parseOptionalUUID("actor_user_id", &empty)
	require.NoError(t, err)
	assert.Nil(t, id)

	valid := "7a3adff1-5b9a-4a68-9a33-cf1f493806de"
	id, err = parseOptionalUUID("actor_user_id", &valid)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, valid, id.String())

	bad := "not-a-uuid"
	_, err = parseOptionalUUID("actor_user_id", &bad)
	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "actor_user_id", vErr.Field)
}
