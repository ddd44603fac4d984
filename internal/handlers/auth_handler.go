package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService services.AuthService, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   validator,
	}
}

// Signup registers a local account and returns a session token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req validator.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		h.handleServiceError(c, verrs)
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		h.handleServiceError(c, verrs)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Exchange trades an external identity token for a local session token. The
// optional role field is a proposal applied during reconciliation.
func (h *AuthHandler) Exchange(c *gin.Context) {
	var req validator.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		h.handleServiceError(c, verrs)
		return
	}

	resp, err := h.authService.Exchange(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's directory record.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	user, err := h.authService.Me(c.Request.Context(), *principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
