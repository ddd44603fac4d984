package services

import (
	"context"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/validator"
)

// ===== RESPONSE DTOS =====

// AuthResponse is returned by signup, login and token exchange.
type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// InternshipSummary is the listing shape: applicant details stripped,
// only the count exposed.
type InternshipSummary struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Company         string                `json:"company"`
	Field           string                `json:"field"`
	Location        string                `json:"location"`
	Remote          bool                  `json:"remote"`
	Paid            bool                  `json:"paid"`
	Description     string                `json:"description"`
	Active          bool                  `json:"active"`
	PostedBy        string                `json:"posted_by"`
	ApplicationForm []models.FormQuestion `json:"application_form,omitempty"`
	ApplicantCount  int                   `json:"applicant_count"`
	CreatedAt       string                `json:"created_at"`
}

// ApplicationView pairs an application with the internship it belongs to.
type ApplicationView struct {
	InternshipID    string             `json:"internship_id"`
	InternshipTitle string             `json:"internship_title"`
	Company         string             `json:"company"`
	Application     models.Application `json:"application"`
}

// StudentApplicationStats is one student's slice of the bulk lookup.
type StudentApplicationStats struct {
	Student      models.PublicUser `json:"student"`
	Applications []ApplicationView `json:"applications"`
	Total        int               `json:"total"`
	Accepted     int               `json:"accepted"`
	Rejected     int               `json:"rejected"`
}

// StudentLookupResult is returned by the bulk university lookup.
type StudentLookupResult struct {
	Students          []StudentApplicationStats `json:"students"`
	Matched           int                       `json:"matched"`
	Requested         int                       `json:"requested,omitempty"`
	VerifiedCount     int                       `json:"verified_count"`
	TotalApplications int                       `json:"total_applications"`
	TotalAccepted     int                       `json:"total_accepted"`
}

// ProviderUserCheck reports the provider-side record for an email.
type ProviderUserCheck struct {
	Found    bool                       `json:"found"`
	Identity *identity.ExternalIdentity `json:"identity,omitempty"`
	Local    *models.PublicUser         `json:"local,omitempty"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Signup(ctx context.Context, req validator.SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req validator.LoginRequest) (*AuthResponse, error)
	Exchange(ctx context.Context, req validator.ExchangeRequest) (*AuthResponse, error)
	Me(ctx context.Context, principal auth.Principal) (*models.PublicUser, error)
}

type InternshipService interface {
	Create(ctx context.Context, principal auth.Principal, req validator.CreateInternshipRequest) (*models.Internship, error)
	List(ctx context.Context, principal *auth.Principal, filters validator.ListInternshipsRequest) ([]InternshipSummary, error)
	Get(ctx context.Context, principal *auth.Principal, id string) (*models.Internship, error)
	Update(ctx context.Context, principal auth.Principal, id string, req validator.UpdateInternshipRequest) (*models.Internship, error)
	Delete(ctx context.Context, principal auth.Principal, id string) error
	Takedown(ctx context.Context, principal auth.Principal, id string) error
	Restore(ctx context.Context, principal auth.Principal, id string) error
	Apply(ctx context.Context, principal auth.Principal, id string, req validator.ApplyRequest) (*models.Application, error)
	Applicants(ctx context.Context, principal auth.Principal, id string) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, principal auth.Principal, internshipID, applicationID string, req validator.UpdateApplicationStatusRequest) error
	StudentApplications(ctx context.Context, principal auth.Principal, studentID string) ([]ApplicationView, error)
}

type UserService interface {
	GetProfile(ctx context.Context, principal auth.Principal, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, principal auth.Principal, req validator.UpdateProfileRequest) (*models.PublicUser, error)
}

type UniversityService interface {
	ListStudents(ctx context.Context, principal auth.Principal, query string, limit, offset int) ([]models.PublicUser, error)
	SetStudentVerified(ctx context.Context, principal auth.Principal, studentID string, verified bool) (*models.PublicUser, error)
	BulkStudentLookup(ctx context.Context, principal auth.Principal, req validator.BulkStudentsRequest) (*StudentLookupResult, error)
}

type AdminService interface {
	CheckProviderUser(ctx context.Context, email string) (*ProviderUserCheck, error)
	ToggleVerified(ctx context.Context, email string) (*ProviderUserCheck, error)
	DeleteUser(ctx context.Context, userID string) error
	SetRole(ctx context.Context, userID string, role models.UserRole) (*models.PublicUser, error)
}

// NotificationEventService publishes typed domain events. Delivery is
// best-effort: failures are logged by the implementation, never returned to
// the request path.
type NotificationEventService interface {
	ApplicationSubmitted(ctx context.Context, internshipID, applicationID, applicantID, company, title string)
	ApplicationStatusChanged(ctx context.Context, internshipID, applicationID, status, changedBy string)
	BadgeAwarded(ctx context.Context, userID, badge string)
	UserVerified(ctx context.Context, userID, email string, verified bool, setBy string)
	Close() error
}
