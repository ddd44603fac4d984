package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/InternBridge/internship-service/internal/cache"
	"github.com/InternBridge/internship-service/internal/config"
	"github.com/InternBridge/internship-service/internal/utils"
)

// Kinded errors. Callers branch on these with errors.Is, never on message text.
var (
	// ErrProviderUnavailable means the provider is not configured or could not
	// be initialized. Handlers map it to a server-side (5xx) condition.
	ErrProviderUnavailable = errors.New("identity provider not configured")

	// ErrInvalidToken means the provider rejected the credential (expired,
	// malformed, revoked). Handlers map it to a 4xx condition.
	ErrInvalidToken = errors.New("invalid identity token")

	// ErrUserNotFound means the provider has no account for the given key.
	ErrUserNotFound = errors.New("identity provider user not found")
)

// ExternalIdentity is the normalized claim set extracted from a verified
// provider token or a provider user record.
type ExternalIdentity struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// Provider is the capability the auth reconciler and the university/admin
// flows need from the external identity service.
type Provider interface {
	// Configured reports whether a provider handle is usable.
	Configured() bool

	// VerifyToken checks an externally-issued identity token and returns its
	// claims. Fails with ErrProviderUnavailable or ErrInvalidToken.
	VerifyToken(ctx context.Context, token string) (*ExternalIdentity, error)

	// GetUserByEmail looks up the provider's account for an email address.
	GetUserByEmail(ctx context.Context, email string) (*ExternalIdentity, error)

	// SetEmailVerified writes the verification flag back to the provider.
	SetEmailVerified(ctx context.Context, email string, verified bool) error

	// ListUsers returns one page of provider accounts. Used only by the
	// offline diagnostic tool, never on the request path.
	ListUsers(ctx context.Context, page, pageSize int) ([]*ExternalIdentity, int, error)
}

// CasdoorProvider holds the process-wide Casdoor handle. Initialization is
// lazy and guarded by sync.Once: two request goroutines racing to the first
// call both observe the same handle, which makes the init idempotent without
// inspecting "already initialized" errors. Init failure is recorded and
// surfaced as ErrProviderUnavailable on every subsequent call; it never
// panics out of initialization.
type CasdoorProvider struct {
	cfg    config.CasdoorConfig
	logger utils.Logger

	once   sync.Once
	client *casdoorsdk.Client

	userCache *cache.CacheHelper
}

func NewCasdoorProvider(cfg config.CasdoorConfig, redisClient *redis.Client, logger utils.Logger) *CasdoorProvider {
	return &CasdoorProvider{
		cfg:       cfg,
		logger:    logger,
		userCache: cache.NewCacheHelper(redisClient, cache.ProviderUserCacheConfig.Prefix),
	}
}

func (p *CasdoorProvider) init() {
	cred, tried := LoadCredentials(p.cfg)
	if cred == nil {
		p.logger.Warn("identity provider not initialized: no credentials found",
			"tried", strings.Join(tried, ", "))
		return
	}

	p.client = casdoorsdk.NewClient(
		cred.Endpoint,
		cred.ClientID,
		cred.ClientSecret,
		cred.Certificate,
		cred.Organization,
		cred.Application,
	)
	p.logger.Info("identity provider initialized", "endpoint", cred.Endpoint)
}

// handle returns the provider client, initializing it on first use.
func (p *CasdoorProvider) handle() *casdoorsdk.Client {
	p.once.Do(p.init)
	return p.client
}

func (p *CasdoorProvider) Configured() bool {
	return p.handle() != nil
}

func (p *CasdoorProvider) VerifyToken(ctx context.Context, token string) (*ExternalIdentity, error) {
	client := p.handle()
	if client == nil {
		return nil, ErrProviderUnavailable
	}

	claims, err := client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &ExternalIdentity{
		SubjectID:     claims.User.Id,
		Email:         claims.User.Email,
		EmailVerified: claims.User.EmailVerified,
		DisplayName:   claims.User.DisplayName,
	}, nil
}

func (p *CasdoorProvider) GetUserByEmail(ctx context.Context, email string) (*ExternalIdentity, error) {
	client := p.handle()
	if client == nil {
		return nil, ErrProviderUnavailable
	}

	var cached ExternalIdentity
	if err := p.userCache.Get(ctx, email, &cached); err == nil {
		return &cached, nil
	}

	user, err := client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from provider: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ident := convertUser(user)
	_ = p.userCache.Set(ctx, email, ident, cache.ProviderUserCacheConfig.TTL)
	return ident, nil
}

func (p *CasdoorProvider) SetEmailVerified(ctx context.Context, email string, verified bool) error {
	client := p.handle()
	if client == nil {
		return ErrProviderUnavailable
	}

	user, err := client.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user from provider: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.EmailVerified = verified
	if _, err := client.UpdateUser(user); err != nil {
		return fmt.Errorf("failed to update provider user: %w", err)
	}

	// The cached copy is stale now.
	_ = p.userCache.Delete(ctx, email)
	return nil
}

func (p *CasdoorProvider) ListUsers(ctx context.Context, page, pageSize int) ([]*ExternalIdentity, int, error) {
	client := p.handle()
	if client == nil {
		return nil, 0, ErrProviderUnavailable
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	users, total, err := client.GetPaginationUsers(page, pageSize, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list provider users: %w", err)
	}

	idents := make([]*ExternalIdentity, 0, len(users))
	for _, u := range users {
		idents = append(idents, convertUser(u))
	}
	return idents, total, nil
}

func convertUser(u *casdoorsdk.User) *ExternalIdentity {
	return &ExternalIdentity{
		SubjectID:     u.Id,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
	}
}
