package repositories

import (
	"context"
	"errors"

	"github.com/InternBridge/internship-service/internal/models"
)

// Kinded storage errors. Services branch on these, never on driver messages.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrUnavailable = errors.New("storage unavailable")
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query  string // substring match on email
	Role   *models.UserRole
	Limit  int
	Offset int
}

type InternshipFilters struct {
	Field    *string
	Location *string
	Remote   *bool
	Paid     *bool
	Active   *bool
	PostedBy *string
	Limit    int
	Offset   int
}

// InternshipUpdate is a partial update; nil fields are left untouched.
// Active, applicants and ownership are deliberately not updatable here -
// they have dedicated operations.
type InternshipUpdate struct {
	Title           *string
	Company         *string
	Description     *string
	Field           *string
	Location        *string
	Remote          *bool
	Paid            *bool
	ApplicationForm *[]models.FormQuestion
}

// ===== REPOSITORY INTERFACES =====

// UserRepository is the local user directory. Verification, role and
// gamification writes must be atomic single-document updates; concurrent
// requests for the same user rely on document-level atomicity, not on
// in-process locks.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	UpdateProfile(ctx context.Context, id string, profile models.Profile) error
	SetVerified(ctx context.Context, id string, verified bool) error
	SetRole(ctx context.Context, id string, role models.UserRole) error

	// AddApplicationReward atomically increments points and the application
	// streak, optionally awarding a badge in the same update.
	AddApplicationReward(ctx context.Context, id string, points int, badgeKey string) error

	ListStudents(ctx context.Context, filters UserFilters) ([]*models.User, error)
	FindStudentsByEmails(ctx context.Context, emails []string) ([]*models.User, error)
	FindStudentsByDomain(ctx context.Context, domain string) ([]*models.User, error)

	Delete(ctx context.Context, id string) error
}

// InternshipRepository stores postings with their embedded applications.
type InternshipRepository interface {
	Create(ctx context.Context, internship *models.Internship) error
	GetByID(ctx context.Context, id string) (*models.Internship, error)
	List(ctx context.Context, filters InternshipFilters) ([]*models.Internship, error)
	Update(ctx context.Context, id string, update InternshipUpdate) error
	Delete(ctx context.Context, id string) error

	// SetActive is the takedown/restore flag flip; applicants are untouched.
	SetActive(ctx context.Context, id string, active bool) error

	// AddApplication appends an application in one guarded single-document
	// update: when the applicant already has an entry the update matches
	// nothing and ErrDuplicate is returned, so of two racing submissions
	// exactly one wins.
	AddApplication(ctx context.Context, postingID string, app *models.Application) error

	// UpdateApplicationStatus targets one embedded application by
	// (postingID, applicationID) with a positional update.
	UpdateApplicationStatus(ctx context.Context, postingID, applicationID string, status models.ApplicationStatus) error

	FindByApplicant(ctx context.Context, userID string) ([]*models.Internship, error)
	FindByApplicants(ctx context.Context, userIDs []string) ([]*models.Internship, error)
}

// Repository aggregates the per-collection repositories.
type Repository interface {
	User() UserRepository
	Internship() InternshipRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
