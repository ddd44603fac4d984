package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type universityService struct {
	users       repositories.UserRepository
	internships repositories.InternshipRepository
	provider    identity.Provider
	notify      NotificationEventService
	logger      utils.Logger
}

func NewUniversityService(
	users repositories.UserRepository,
	internships repositories.InternshipRepository,
	provider identity.Provider,
	notify NotificationEventService,
	logger utils.Logger,
) UniversityService {
	return &universityService{
		users:       users,
		internships: internships,
		provider:    provider,
		notify:      notify,
		logger:      logger,
	}
}

func (s *universityService) ListStudents(ctx context.Context, principal auth.Principal, query string, limit, offset int) ([]models.PublicUser, error) {
	if err := requireUniversity(principal, "list students"); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	students, err := s.users.ListStudents(ctx, repositories.UserFilters{
		Query:  query,
		Role:   &role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	return toPublicUsers(students), nil
}

// SetStudentVerified writes the flag to the local directory first, then
// mirrors it to the identity provider. The provider write is best-effort: a
// failure is logged and the local state stands, to be reconciled on the
// student's next provider-token authentication.
func (s *universityService) SetStudentVerified(ctx context.Context, principal auth.Principal, studentID string, verified bool) (*models.PublicUser, error) {
	if err := requireUniversity(principal, "verify student"); err != nil {
		return nil, err
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(principal.UserID, "user", "verify student", "target is not a student")
	}

	if err := s.users.SetVerified(ctx, studentID, verified); err != nil {
		return nil, fmt.Errorf("setting verified flag: %w", err)
	}
	student.Verified = verified

	if err := s.provider.SetEmailVerified(ctx, student.Email, verified); err != nil {
		s.logger.Warn("provider verification write-through failed",
			"student_id", studentID, "verified", verified, "error", err)
	}

	s.notify.UserVerified(ctx, studentID, student.Email, verified, principal.UserID)

	pub := student.Public()
	return &pub, nil
}

// BulkStudentLookup resolves a set of students by explicit emails or by email
// domain, and attaches their application histories with per-student and
// aggregate counts.
func (s *universityService) BulkStudentLookup(ctx context.Context, principal auth.Principal, req validator.BulkStudentsRequest) (*StudentLookupResult, error) {
	if err := requireUniversity(principal, "bulk student lookup"); err != nil {
		return nil, err
	}

	hasEmails := len(req.Emails) > 0
	hasDomain := strings.TrimSpace(req.Domain) != ""
	if hasEmails == hasDomain {
		return nil, ValidationErrors{{
			Field:   "emails",
			Message: "provide either emails or domain, not both",
			Rule:    "one_of",
		}}
	}

	var (
		students []*models.User
		err      error
	)
	if hasEmails {
		students, err = s.users.FindStudentsByEmails(ctx, req.Emails)
	} else {
		students, err = s.users.FindStudentsByDomain(ctx, req.Domain)
	}
	if err != nil {
		return nil, fmt.Errorf("finding students: %w", err)
	}

	result := &StudentLookupResult{
		Students: make([]StudentApplicationStats, 0, len(students)),
		Matched:  len(students),
	}
	if hasEmails {
		result.Requested = len(req.Emails)
	}

	// result.Students has capacity for every student, so the pointers taken
	// below survive the appends.
	ids := make([]string, 0, len(students))
	byID := make(map[primitive.ObjectID]*StudentApplicationStats, len(students))
	for _, student := range students {
		if student.Verified {
			result.VerifiedCount++
		}
		result.Students = append(result.Students, StudentApplicationStats{
			Student:      student.Public(),
			Applications: []ApplicationView{},
		})
		ids = append(ids, student.ID.Hex())
		byID[student.ID] = &result.Students[len(result.Students)-1]
	}
	if len(ids) == 0 {
		return result, nil
	}

	postings, err := s.internships.FindByApplicants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("finding applications: %w", err)
	}

	for _, posting := range postings {
		for idx := range posting.Applicants {
			app := &posting.Applicants[idx]
			if app.Applicant == nil {
				continue
			}
			stats, ok := byID[*app.Applicant]
			if !ok {
				continue
			}
			stats.Applications = append(stats.Applications, ApplicationView{
				InternshipID:    posting.ID.Hex(),
				InternshipTitle: posting.Title,
				Company:         posting.Company,
				Application:     *app,
			})
			stats.Total++
			result.TotalApplications++
			switch app.Status {
			case models.StatusAccepted:
				stats.Accepted++
				result.TotalAccepted++
			case models.StatusRejected:
				stats.Rejected++
			}
		}
	}

	return result, nil
}

func requireUniversity(principal auth.Principal, action string) error {
	if principal.Role != models.RoleUniversity && principal.Role != models.RoleAdmin {
		return NewPermissionError(principal.UserID, "students", action, "university role required")
	}
	return nil
}

func toPublicUsers(users []*models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
