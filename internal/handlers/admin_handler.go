package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

// AdminHandler backs the key-guarded admin surface. The admin key check lives
// in AdminKeyMiddleware, so every method here assumes the caller is trusted.
type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

// CheckUser reports the provider-side and local record for an email.
func (h *AdminHandler) CheckUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "email query parameter required"})
		return
	}

	check, err := h.adminService.CheckProviderUser(c.Request.Context(), email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// ToggleVerified flips the provider's verified flag and syncs it locally.
func (h *AdminHandler) ToggleVerified(c *gin.Context) {
	var req validator.ToggleVerifiedRequest
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

	check, err := h.adminService.ToggleVerified(c.Request.Context(), req.Email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	var req validator.SetRoleRequest
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

	user, err := h.adminService.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
