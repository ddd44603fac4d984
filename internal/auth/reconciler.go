package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
)

var (
	// ErrMissingCredential: no bearer value was presented.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential: the credential was rejected by both verification
	// paths. Maps to a 4xx condition.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrServerMisconfigured: the credential was not a local token and the
	// external provider is unusable. A server-side (5xx) condition, so callers
	// can tell "your token is bad" from "we cannot check tokens right now".
	ErrServerMisconfigured = errors.New("identity provider not configured on server")

	// ErrRoleNotAllowed: the proposed role at credential exchange is unknown
	// or privileged. Admin cannot be self-assigned through the exchange path.
	ErrRoleNotAllowed = errors.New("proposed role not allowed")
)

// Principal is the authenticated identity resolved for one request. It is
// derived fresh on every request and never persisted.
type Principal struct {
	UserID            string
	Role              models.UserRole
	ProviderSubjectID string
}

// Reconciler accepts a bearer credential of unknown kind - a locally-issued
// session token or an externally-issued identity token - and produces one
// consistent Principal, lazily materializing and syncing the local user
// record for provider identities.
type Reconciler struct {
	tokens   *TokenService
	provider identity.Provider
	users    repositories.UserRepository
	logger   utils.Logger
}

func NewReconciler(tokens *TokenService, provider identity.Provider, users repositories.UserRepository, logger utils.Logger) *Reconciler {
	return &Reconciler{
		tokens:   tokens,
		provider: provider,
		users:    users,
		logger:   logger,
	}
}

// Authenticate resolves one bearer credential into a Principal.
//
// The local path is tried first and short-circuits without a directory read:
// the token's role claim is a point-in-time snapshot trusted for the token's
// lifetime. Only the external path reads (and possibly writes) the directory.
func (r *Reconciler) Authenticate(ctx context.Context, bearer string) (*Principal, error) {
	if bearer == "" {
		return nil, ErrMissingCredential
	}

	if claims, err := r.tokens.Verify(bearer); err == nil {
		return &Principal{UserID: claims.Subject, Role: claims.Role}, nil
	}

	ident, err := r.provider.VerifyToken(ctx, bearer)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	user, err := r.syncUser(ctx, ident, "")
	if err != nil {
		return nil, err
	}

	return &Principal{
		UserID:            user.ID.Hex(),
		Role:              user.Role,
		ProviderSubjectID: ident.SubjectID,
	}, nil
}

// Exchange verifies an external identity token, reconciles the local user
// record (applying an optional proposed role, last proposal wins), and issues
// a local session token so subsequent requests skip external verification.
func (r *Reconciler) Exchange(ctx context.Context, externalToken string, proposedRole models.UserRole) (string, *models.User, error) {
	if externalToken == "" {
		return "", nil, ErrMissingCredential
	}
	if proposedRole != "" {
		if !models.ValidRole(proposedRole) || proposedRole == models.RoleAdmin {
			return "", nil, ErrRoleNotAllowed
		}
	}

	ident, err := r.provider.VerifyToken(ctx, externalToken)
	if err != nil {
		return "", nil, classifyProviderError(err)
	}

	user, err := r.syncUser(ctx, ident, proposedRole)
	if err != nil {
		return "", nil, err
	}

	token, err := r.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session token: %w", err)
	}
	return token, user, nil
}

// syncUser materializes or updates the local record for a verified external
// identity. The provider-asserted email is normalized before lookup so a
// case-variant token maps onto the account local signup created, not a
// second one. Verification sync is one-directional: the provider can promote
// the local flag to true but never demote it.
func (r *Reconciler) syncUser(ctx context.Context, ident *identity.ExternalIdentity, proposedRole models.UserRole) (*models.User, error) {
	email := models.NormalizeEmail(ident.Email)
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("directory lookup: %w", err)
		}
		return r.provision(ctx, ident, email, proposedRole)
	}

	if ident.EmailVerified && !user.Verified {
		if err := r.users.SetVerified(ctx, user.ID.Hex(), true); err != nil {
			return nil, fmt.Errorf("syncing verification flag: %w", err)
		}
		user.Verified = true
	}

	if proposedRole != "" && user.Role != proposedRole {
		if err := r.users.SetRole(ctx, user.ID.Hex(), proposedRole); err != nil {
			return nil, fmt.Errorf("applying proposed role: %w", err)
		}
		user.Role = proposedRole
	}

	return user, nil
}

func (r *Reconciler) provision(ctx context.Context, ident *identity.ExternalIdentity, email string, proposedRole models.UserRole) (*models.User, error) {
	role := models.RoleStudent
	if proposedRole != "" {
		role = proposedRole
	}

	name := ident.DisplayName
	if name == "" {
		name = localPart(email)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Role:     role,
		Verified: ident.EmailVerified,
	}
	if err := r.users.Create(ctx, user); err != nil {
		// Two requests for the same never-seen identity can race on create;
		// the unique email index makes one of them lose. Losing is fine, the
		// record exists now.
		if errors.Is(err, repositories.ErrDuplicate) {
			return r.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("provisioning user: %w", err)
	}

	r.logger.Info("provisioned user from external identity",
		"email", email, "role", role, "verified", ident.EmailVerified)
	return user, nil
}

func classifyProviderError(err error) error {
	if errors.Is(err, identity.ErrProviderUnavailable) {
		return ErrServerMisconfigured
	}
	return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
