package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/utils"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is used for operations with no natural payload.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// handleServiceError maps service errors onto HTTP statuses. Unknown errors
// become 500s with a generic body; 503 signals a transient storage problem
// worth retrying.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]any{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrInternshipNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Internship not found"})
	case errors.Is(err, services.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Application not found"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Email already registered"})
	case errors.Is(err, services.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Already applied to this internship"})
	case errors.Is(err, services.ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, services.ErrUnverified):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account not verified"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	case errors.Is(err, services.ErrStorageDown):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Storage temporarily unavailable"})
	case errors.Is(err, auth.ErrRoleNotAllowed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Proposed role not allowed"})
	case errors.Is(err, auth.ErrMissingCredential), errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credential"})
	case errors.Is(err, auth.ErrServerMisconfigured):
		// Server-side condition: the caller's token may be fine, we just
		// cannot check it.
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Identity provider not configured"})
	default:
		utils.FromContext(c.Request.Context(), h.logger).Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
