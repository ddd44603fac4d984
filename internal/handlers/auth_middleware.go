package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
)

const principalKey = "principal"

// AuthMiddleware authenticates requests through the credential reconciler, so
// a route accepts a locally-issued session token and an external identity
// token interchangeably.
type AuthMiddleware struct {
	reconciler *auth.Reconciler
	users      repositories.UserRepository
}

func NewAuthMiddleware(reconciler *auth.Reconciler, users repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{reconciler: reconciler, users: users}
}

// Authenticate resolves the bearer credential into a Principal and stores it
// in the request context.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := am.reconciler.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortAuthError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID)
		c.Set("user_role", principal.Role)
		c.Next()
	}
}

// OptionalAuthenticate resolves the credential when one is present and valid,
// and lets the request through anonymously otherwise.
func (am *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := am.reconciler.Authenticate(c.Request.Context(), token)
		if err == nil {
			c.Set(principalKey, principal)
			c.Set("user_id", principal.UserID)
			c.Set("user_role", principal.Role)
		}
		c.Next()
	}
}

// RequireRole gates a route on the principal's current role. Admins always
// pass.
func (am *AuthMiddleware) RequireRole(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "user role not found in context"})
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, required := range requiredRoles {
			if principal.Role == required || principal.Role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}
		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireVerified gates a route on the stored verified flag. The flag is read
// fresh from the directory, not from the token, so a just-revoked verification
// takes effect immediately. Only students and employers are gated; admin and
// university accounts pass regardless of their flag.
func (am *AuthMiddleware) RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			c.Abort()
			return
		}

		if principal.Role != models.RoleStudent && principal.Role != models.RoleEmployer {
			c.Next()
			return
		}

		user, err := am.users.GetByID(c.Request.Context(), principal.UserID)
		if err != nil {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account not verified"})
			c.Abort()
			return
		}
		if !user.Verified {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account not verified"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminKeyMiddleware guards the admin surface with a shared key header,
// independently of user authentication.
func AdminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Admin surface not configured"})
			c.Abort()
			return
		}
		provided := c.GetHeader("x-admin-key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, or nil on
// unauthenticated (optional-auth) requests.
func PrincipalFromContext(c *gin.Context) *auth.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	principal, ok := v.(*auth.Principal)
	if !ok {
		return nil
	}
	return principal
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func abortAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authorization header missing"})
	case errors.Is(err, auth.ErrServerMisconfigured):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Identity provider not configured"})
	default:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credential"})
	}
	c.Abort()
}
