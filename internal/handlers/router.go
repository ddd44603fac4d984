package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/storage"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	internshipHandler *InternshipHandler
	userHandler       *UserHandler
	universityHandler *UniversityHandler
	adminHandler      *AdminHandler
	uploadHandler     *UploadHandler
	authMiddleware    *AuthMiddleware
	adminKey          string
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	authMiddleware *AuthMiddleware,
	store storage.Storage,
	validator *validator.Validator,
	logger utils.Logger,
	adminKey string,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth, validator, logger),
		internshipHandler: NewInternshipHandler(serviceManager.Internship, validator, logger),
		userHandler:       NewUserHandler(serviceManager.User, validator, logger),
		universityHandler: NewUniversityHandler(serviceManager.University, validator, logger),
		adminHandler:      NewAdminHandler(serviceManager.Admin, validator, logger),
		uploadHandler:     NewUploadHandler(store, logger),
		authMiddleware:    authMiddleware,
		adminKey:          adminKey,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Auth routes; signup/login/exchange are unauthenticated by nature.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", hm.authHandler.Signup)
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.POST("/exchange", hm.authHandler.Exchange)
		authGroup.GET("/me", hm.authMiddleware.Authenticate(), hm.authHandler.Me)
	}

	// Internship routes. Listing and reading are public with optional auth so
	// owners and admins can see their inactive postings.
	internships := api.Group("/internships")
	{
		internships.GET("", hm.authMiddleware.OptionalAuthenticate(), hm.internshipHandler.List)
		internships.GET("/:id", hm.authMiddleware.OptionalAuthenticate(), hm.internshipHandler.Get)

		authed := internships.Group("")
		authed.Use(hm.authMiddleware.Authenticate())
		{
			authed.POST("", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Create)
			authed.PUT("/:id", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Update)
			authed.DELETE("/:id", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Delete)
			authed.POST("/:id/takedown", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Takedown)
			authed.POST("/:id/restore", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Restore)

			authed.POST("/:id/apply", hm.authMiddleware.RequireRole(models.RoleStudent), hm.authMiddleware.RequireVerified(), hm.internshipHandler.Apply)
			authed.GET("/:id/applicants", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.internshipHandler.Applicants)
			authed.PUT("/:id/applications/:application_id/status", hm.authMiddleware.RequireRole(models.RoleEmployer), hm.internshipHandler.UpdateApplicationStatus)

			authed.GET("/applications/me", hm.internshipHandler.StudentApplications)
			authed.GET("/applications/student/:student_id", hm.internshipHandler.StudentApplications)
		}
	}

	// User routes
	users := api.Group("/users")
	users.Use(hm.authMiddleware.Authenticate())
	{
		users.GET("/:id", hm.userHandler.GetProfile)
		users.PUT("/me/profile", hm.userHandler.UpdateProfile)
	}

	// University routes
	university := api.Group("/university")
	university.Use(hm.authMiddleware.Authenticate(), hm.authMiddleware.RequireRole(models.RoleUniversity))
	{
		university.GET("/students", hm.universityHandler.ListStudents)
		university.PUT("/students/:id/verify", hm.universityHandler.VerifyStudent)
		university.POST("/students/bulk", hm.universityHandler.BulkStudents)
	}

	// Admin routes, guarded by the shared key rather than user auth.
	admin := api.Group("/admin")
	admin.Use(AdminKeyMiddleware(hm.adminKey))
	{
		admin.GET("/users/check", hm.adminHandler.CheckUser)
		admin.POST("/users/toggle-verified", hm.adminHandler.ToggleVerified)
		admin.PUT("/users/:id/role", hm.adminHandler.SetRole)
		admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)
	}

	// Upload routes
	uploads := api.Group("/uploads")
	uploads.Use(hm.authMiddleware.Authenticate())
	{
		uploads.POST("/resume", hm.uploadHandler.UploadResume)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "internship-service",
		})
	})
}
