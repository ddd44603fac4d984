package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
)

// adminService backs the key-guarded admin surface. Role checks happen at the
// transport layer, so these methods take no principal.
type adminService struct {
	users    repositories.UserRepository
	provider identity.Provider
	logger   utils.Logger
}

func NewAdminService(users repositories.UserRepository, provider identity.Provider, logger utils.Logger) AdminService {
	return &adminService{users: users, provider: provider, logger: logger}
}

// CheckProviderUser reports the provider-side and local records for an email,
// for diagnosing reconciliation drift.
func (s *adminService) CheckProviderUser(ctx context.Context, email string) (*ProviderUserCheck, error) {
	check := &ProviderUserCheck{}

	ident, err := s.provider.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		check.Found = true
		check.Identity = ident
	case errors.Is(err, identity.ErrUserNotFound):
		// Absent at the provider; still report the local side.
	default:
		return nil, fmt.Errorf("provider lookup: %w", err)
	}

	local, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		pub := local.Public()
		check.Local = &pub
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	return check, nil
}

// ToggleVerified flips the provider's email-verified flag and mirrors the new
// value into the local directory. This is the one path that may demote a
// local verified flag.
func (s *adminService) ToggleVerified(ctx context.Context, email string) (*ProviderUserCheck, error) {
	ident, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("provider lookup: %w", err)
	}

	next := !ident.EmailVerified
	if err := s.provider.SetEmailVerified(ctx, email, next); err != nil {
		return nil, fmt.Errorf("provider verification write: %w", err)
	}
	ident.EmailVerified = next

	check := &ProviderUserCheck{Found: true, Identity: ident}

	local, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.SetVerified(ctx, local.ID.Hex(), next); err != nil {
			return nil, fmt.Errorf("syncing local verified flag: %w", err)
		}
		local.Verified = next
		pub := local.Public()
		check.Local = &pub
	case errors.Is(err, repositories.ErrNotFound):
		// No local record yet; the flag lands on first reconciliation.
	default:
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	s.logger.Info("verified flag toggled", "email", email, "verified", next)
	return check, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (s *adminService) SetRole(ctx context.Context, userID string, role models.UserRole) (*models.PublicUser, error) {
	if !models.ValidRole(role) {
		return nil, ValidationErrors{{Field: "role", Message: "must be a valid user role", Rule: "user_role"}}
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("setting role: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	s.logger.Info("role changed", "user_id", userID, "role", role)
	pub := user.Public()
	return &pub, nil
}
