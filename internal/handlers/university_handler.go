package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type UniversityHandler struct {
	BaseHandler
	universityService services.UniversityService
	validator         *validator.Validator
}

func NewUniversityHandler(universityService services.UniversityService, validator *validator.Validator, logger utils.Logger) *UniversityHandler {
	return &UniversityHandler{
		BaseHandler:       NewBaseHandler(logger),
		universityService: universityService,
		validator:         validator,
	}
}

func (h *UniversityHandler) ListStudents(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	students, err := h.universityService.ListStudents(c.Request.Context(), *principal, c.Query("q"), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students, "count": len(students)})
}

// VerifyStudent sets or clears a student's verified flag.
func (h *UniversityHandler) VerifyStudent(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.VerifyStudentRequest
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

	student, err := h.universityService.SetStudentVerified(c.Request.Context(), *principal, c.Param("id"), *req.Verified)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// BulkStudents resolves students by emails or domain with their application
// histories.
func (h *UniversityHandler) BulkStudents(c *gin.Context) {
	principal := PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.BulkStudentsRequest
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

	result, err := h.universityService.BulkStudentLookup(c.Request.Context(), *principal, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
