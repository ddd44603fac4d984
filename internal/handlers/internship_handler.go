package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type InternshipHandler struct {
	BaseHandler
	internshipService services.InternshipService
	validator         *validator.Validator
}

func NewInternshipHandler(internshipService services.InternshipService, validator *validator.Validator, logger utils.Logger) *InternshipHandler {
	return &InternshipHandler{
		BaseHandler:       NewBaseHandler(logger),
		internshipService: internshipService,
		validator:         validator,
	}
}

func (h *InternshipHandler) Create(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.CreateInternshipRequest
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

	internship, err := h.internshipService.Create(c.Request.Context(), *principal, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, internship)
}

// List is reachable anonymously; an authenticated employer or admin also sees
// inactive postings they are allowed to see.
func (h *InternshipHandler) List(c *gin.Context) {
	var req validator.ListInternshipsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		h.handleServiceError(c, verrs)
		return
	}

	summaries, err := h.internshipService.List(c.Request.Context(), PrincipalFromContext(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"internships": summaries, "count": len(summaries)})
}

func (h *InternshipHandler) Get(c *gin.Context) {
	internship, err := h.internshipService.Get(c.Request.Context(), PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, internship)
}

func (h *InternshipHandler) Update(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.UpdateInternshipRequest
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

	internship, err := h.internshipService.Update(c.Request.Context(), *principal, c.Param("id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, internship)
}

func (h *InternshipHandler) Delete(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.internshipService.Delete(c.Request.Context(), *principal, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Internship deleted"})
}

func (h *InternshipHandler) Takedown(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.internshipService.Takedown(c.Request.Context(), *principal, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Internship taken down"})
}

func (h *InternshipHandler) Restore(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.internshipService.Restore(c.Request.Context(), *principal, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Internship restored"})
}

func (h *InternshipHandler) Apply(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.ApplyRequest
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

	application, err := h.internshipService.Apply(c.Request.Context(), *principal, c.Param("id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *InternshipHandler) Applicants(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	applicants, err := h.internshipService.Applicants(c.Request.Context(), *principal, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applicants": applicants, "count": len(applicants)})
}

func (h *InternshipHandler) UpdateApplicationStatus(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.UpdateApplicationStatusRequest
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

	err := h.internshipService.UpdateApplicationStatus(c.Request.Context(), *principal, c.Param("id"), c.Param("application_id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Application status updated"})
}

// StudentApplications lists everything one student has applied to.
func (h *InternshipHandler) StudentApplications(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := c.Param("student_id")
	if studentID == "" {
		studentID = principal.UserID
	}

	views, err := h.internshipService.StudentApplications(c.Request.Context(), *principal, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": views, "count": len(views)})
}
