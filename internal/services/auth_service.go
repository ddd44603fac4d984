package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type authService struct {
	users      repositories.UserRepository
	passwords  *auth.PasswordService
	tokens     *auth.TokenService
	reconciler *auth.Reconciler
	logger     utils.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	reconciler *auth.Reconciler,
	logger utils.Logger,
) AuthService {
	return &authService{
		users:      users,
		passwords:  passwords,
		tokens:     tokens,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Signup creates a local account. Local signups are trusted as verified;
// only externally-provisioned accounts start from the provider's flag.
// The admin role cannot be self-assigned.
func (s *authService) Signup(ctx context.Context, req validator.SignupRequest) (*AuthResponse, error) {
	role := models.RoleStudent
	if req.Role != "" {
		role = models.UserRole(req.Role)
		if role == models.RoleAdmin {
			return nil, NewPermissionError("", "user", "signup", "admin role cannot be self-assigned")
		}
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	email := models.NormalizeEmail(req.Email)
	name := req.Name
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Verified:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID.Hex(), "role", role)
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req validator.LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		// Provisioned from an external identity; no local credential exists.
		return nil, ErrInvalidLogin
	}
	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidLogin
	}
	if !user.Verified {
		return nil, ErrUnverified
	}

	return s.respond(user)
}

// Exchange trades an external identity token for a local session token,
// reconciling the local account on the way.
func (s *authService) Exchange(ctx context.Context, req validator.ExchangeRequest) (*AuthResponse, error) {
	token, user, err := s.reconciler.Exchange(ctx, req.IDToken, models.UserRole(req.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user.Public()}, nil
}

func (s *authService) Me(ctx context.Context, principal auth.Principal) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

func (s *authService) respond(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}
	return &AuthResponse{Token: token, User: user.Public()}, nil
}
