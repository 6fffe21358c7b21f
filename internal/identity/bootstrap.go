package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAdminEmail = "admin@admin.com"
	defaultAdminName  = "Admin OASIS da Superdotação"
)

// EnsureDefaultAdmin creates the default admin Patient if it does not exist.
// It is the only code path allowed to manufacture an admin account and runs
// once at startup, never inside a request handler. Returns true when the
// account was created.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	existing, err := s.repo.GetPatientByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		if existing.Role != RoleAdmin {
			existing.Role = RoleAdmin
			if err := s.repo.UpdatePatient(ctx, existing); err != nil {
				return false, fmt.Errorf("repair default admin role: %w", err)
			}
		}
		return false, nil
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return false, fmt.Errorf("look up default admin: %w", err)
	}

	profile, _ := json.Marshal(map[string]any{
		"isDefault": true,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})

	name := defaultAdminName
	admin := &Patient{
		ID:      uuid.New(),
		Email:   DefaultAdminEmail,
		Name:    &name,
		Role:    RoleAdmin,
		Profile: profile,
	}

	if err := s.repo.CreatePatient(ctx, admin); err != nil {
		// Another instance may have bootstrapped concurrently.
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("create default admin: %w", err)
	}

	return true, nil
}
