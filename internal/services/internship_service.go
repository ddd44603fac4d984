package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/cache"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

const (
	applicationPoints     = 5
	firstApplicationBadge = "first_application"
)

type internshipService struct {
	internships repositories.InternshipRepository
	users       repositories.UserRepository
	notify      NotificationEventService
	cache       *cache.CacheHelper
	logger      utils.Logger
}

func NewInternshipService(
	internships repositories.InternshipRepository,
	users repositories.UserRepository,
	notify NotificationEventService,
	cacheHelper *cache.CacheHelper,
	logger utils.Logger,
) InternshipService {
	return &internshipService{
		internships: internships,
		users:       users,
		notify:      notify,
		cache:       cacheHelper,
		logger:      logger,
	}
}

func (s *internshipService) Create(ctx context.Context, principal auth.Principal, req validator.CreateInternshipRequest) (*models.Internship, error) {
	if principal.Role != models.RoleEmployer && principal.Role != models.RoleAdmin {
		return nil, NewPermissionError(principal.UserID, "internship", "create", "only employers can post internships")
	}
	if err := s.requireVerified(ctx, principal); err != nil {
		return nil, err
	}

	ownerID, err := primitive.ObjectIDFromHex(principal.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	internship := &models.Internship{
		Title:           req.Title,
		Company:         req.Company,
		Description:     req.Description,
		Field:           req.Field,
		Location:        req.Location,
		Remote:          req.Remote,
		Paid:            req.Paid,
		Active:          true,
		PostedBy:        ownerID,
		ApplicationForm: toFormQuestions(req.ApplicationForm),
	}
	if err := s.internships.Create(ctx, internship); err != nil {
		return nil, fmt.Errorf("creating internship: %w", err)
	}

	s.logger.Info("internship created", "internship_id", internship.ID.Hex(), "posted_by", principal.UserID)
	return internship, nil
}

// List returns posting summaries. Inactive postings are visible only when the
// requester is an admin, or an employer listing their own postings.
func (s *internshipService) List(ctx context.Context, principal *auth.Principal, req validator.ListInternshipsRequest) ([]InternshipSummary, error) {
	filters := repositories.InternshipFilters{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Field != "" {
		filters.Field = &req.Field
	}
	if req.Location != "" {
		filters.Location = &req.Location
	}
	filters.Remote = req.Remote
	filters.Paid = req.Paid
	if req.PostedBy != "" {
		filters.PostedBy = &req.PostedBy
	}

	if s.canSeeInactive(principal, req.PostedBy) {
		filters.Active = req.Active
	} else {
		active := true
		filters.Active = &active
	}

	list, err := s.internships.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listing internships: %w", err)
	}

	summaries := make([]InternshipSummary, 0, len(list))
	for _, i := range list {
		summaries = append(summaries, toSummary(i))
	}
	return summaries, nil
}

func (s *internshipService) Get(ctx context.Context, principal *auth.Principal, id string) (*models.Internship, error) {
	internship, err := s.getCached(ctx, id)
	if err != nil {
		return nil, err
	}
	if !internship.Active && !s.canSeeInactive(principal, internship.PostedBy.Hex()) {
		// Taken-down postings look absent to everyone but the owner and admins.
		return nil, ErrInternshipNotFound
	}
	return internship, nil
}

func (s *internshipService) Update(ctx context.Context, principal auth.Principal, id string, req validator.UpdateInternshipRequest) (*models.Internship, error) {
	if err := s.requireVerified(ctx, principal); err != nil {
		return nil, err
	}
	if _, err := s.ownedPosting(ctx, principal, id, "update"); err != nil {
		return nil, err
	}

	update := repositories.InternshipUpdate{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Field:       req.Field,
		Location:    req.Location,
		Remote:      req.Remote,
		Paid:        req.Paid,
	}
	if req.ApplicationForm != nil {
		form := toFormQuestions(*req.ApplicationForm)
		update.ApplicationForm = &form
	}

	if err := s.internships.Update(ctx, id, update); err != nil {
		return nil, s.mapStoreErr(err)
	}
	s.invalidate(ctx, id)

	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return internship, nil
}

func (s *internshipService) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if err := s.requireVerified(ctx, principal); err != nil {
		return err
	}
	if _, err := s.ownedPosting(ctx, principal, id, "delete"); err != nil {
		return err
	}
	if err := s.internships.Delete(ctx, id); err != nil {
		return s.mapStoreErr(err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Takedown hides a posting without touching its applications.
func (s *internshipService) Takedown(ctx context.Context, principal auth.Principal, id string) error {
	return s.setActive(ctx, principal, id, false, "takedown")
}

// Restore brings a taken-down posting back, applications intact.
func (s *internshipService) Restore(ctx context.Context, principal auth.Principal, id string) error {
	return s.setActive(ctx, principal, id, true, "restore")
}

func (s *internshipService) setActive(ctx context.Context, principal auth.Principal, id string, active bool, action string) error {
	if err := s.requireVerified(ctx, principal); err != nil {
		return err
	}
	if _, err := s.ownedPosting(ctx, principal, id, action); err != nil {
		return err
	}
	if err := s.internships.SetActive(ctx, id, active); err != nil {
		return s.mapStoreErr(err)
	}
	s.invalidate(ctx, id)
	s.logger.Info("internship visibility changed", "internship_id", id, "active", active, "by", principal.UserID)
	return nil
}

// Apply submits an application. The applicant must be a verified student; the
// duplicate guard is the repository's atomic append, so two racing submissions
// from the same user resolve to exactly one application.
func (s *internshipService) Apply(ctx context.Context, principal auth.Principal, id string, req validator.ApplyRequest) (*models.Application, error) {
	if principal.Role != models.RoleStudent && principal.Role != models.RoleAdmin {
		return nil, NewPermissionError(principal.UserID, "internship", "apply", "only students can apply")
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up applicant: %w", err)
	}
	if !user.Verified && user.Role == models.RoleStudent {
		return nil, ErrUnverified
	}

	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if !internship.Active {
		return nil, ErrInternshipNotFound
	}

	app := buildApplication(user, req)
	if err := s.internships.AddApplication(ctx, id, app); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, s.mapStoreErr(err)
	}
	s.invalidate(ctx, id)

	badge := ""
	if user.Gamification.ApplicationStreak == 0 {
		badge = firstApplicationBadge
	}
	if err := s.users.AddApplicationReward(ctx, principal.UserID, applicationPoints, badge); err != nil {
		// The application is already stored; losing the reward is not worth
		// failing the request over.
		s.logger.Warn("application reward failed", "user_id", principal.UserID, "error", err)
	} else if badge != "" {
		s.notify.BadgeAwarded(ctx, principal.UserID, badge)
	}

	s.notify.ApplicationSubmitted(ctx, id, app.ID, principal.UserID, internship.Company, internship.Title)
	return app, nil
}

func (s *internshipService) Applicants(ctx context.Context, principal auth.Principal, id string) ([]models.Application, error) {
	internship, err := s.ownedPosting(ctx, principal, id, "list applicants")
	if err != nil {
		return nil, err
	}
	return internship.Applicants, nil
}

func (s *internshipService) UpdateApplicationStatus(ctx context.Context, principal auth.Principal, internshipID, applicationID string, req validator.UpdateApplicationStatusRequest) error {
	if _, err := s.ownedPosting(ctx, principal, internshipID, "update application status"); err != nil {
		return err
	}

	status := models.ApplicationStatus(req.Status)
	if err := s.internships.UpdateApplicationStatus(ctx, internshipID, applicationID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrApplicationNotFound
		}
		return s.mapStoreErr(err)
	}
	s.invalidate(ctx, internshipID)

	s.notify.ApplicationStatusChanged(ctx, internshipID, applicationID, string(status), principal.UserID)
	return nil
}

// StudentApplications returns everything one student has applied to. Students
// can only read their own; universities and admins can read anyone's.
func (s *internshipService) StudentApplications(ctx context.Context, principal auth.Principal, studentID string) ([]ApplicationView, error) {
	if principal.UserID != studentID &&
		principal.Role != models.RoleUniversity &&
		principal.Role != models.RoleAdmin {
		return nil, NewPermissionError(principal.UserID, "applications", "read", "not your applications")
	}

	studentOID, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	list, err := s.internships.FindByApplicant(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("finding applications: %w", err)
	}

	views := make([]ApplicationView, 0, len(list))
	for _, i := range list {
		if app := i.ApplicationByUser(studentOID); app != nil {
			views = append(views, ApplicationView{
				InternshipID:    i.ID.Hex(),
				InternshipTitle: i.Title,
				Company:         i.Company,
				Application:     *app,
			})
		}
	}
	return views, nil
}

// ===== HELPERS =====

// ownedPosting loads a posting and checks write access: the posting employer
// or any admin.
// requireVerified enforces the verification gate on posting mutations for
// students and employers. The flag is read fresh from the directory, never
// from the token, so a revoked verification blocks the very next mutation.
// Admin and university roles are exempt and skip the read.
func (s *internshipService) requireVerified(ctx context.Context, principal auth.Principal) error {
	if principal.Role != models.RoleStudent && principal.Role != models.RoleEmployer {
		return nil
	}
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("looking up caller: %w", err)
	}
	if !user.Verified {
		return ErrUnverified
	}
	return nil
}

func (s *internshipService) ownedPosting(ctx context.Context, principal auth.Principal, id, action string) (*models.Internship, error) {
	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if principal.Role != models.RoleAdmin && internship.PostedBy.Hex() != principal.UserID {
		return nil, NewPermissionError(principal.UserID, "internship", action, "not the posting owner")
	}
	return internship, nil
}

func (s *internshipService) canSeeInactive(principal *auth.Principal, ownerID string) bool {
	if principal == nil {
		return false
	}
	if principal.Role == models.RoleAdmin {
		return true
	}
	return ownerID != "" && ownerID == principal.UserID
}

func (s *internshipService) getCached(ctx context.Context, id string) (*models.Internship, error) {
	key := cache.InternshipCacheConfig.Prefix + id

	var cached models.Internship
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := s.cache.Set(ctx, key, internship, cache.InternshipCacheConfig.TTL); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		s.logger.Warn("internship cache write failed", "internship_id", id, "error", err)
	}
	return internship, nil
}

func (s *internshipService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cache.InternshipCacheConfig.Prefix+id); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		s.logger.Warn("internship cache invalidation failed", "internship_id", id, "error", err)
	}
}

func (s *internshipService) mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrInternshipNotFound
	case errors.Is(err, repositories.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageDown, err)
	default:
		return err
	}
}

func buildApplication(user *models.User, req validator.ApplyRequest) *models.Application {
	applicant := user.ID
	return &models.Application{
		ID:          uuid.NewString(),
		Applicant:   &applicant,
		University:  req.University,
		Degree:      req.Degree,
		Major:       req.Major,
		CurrentYear: req.CurrentYear,
		Skills:      req.Skills,
		Status:      models.StatusApplied,
		ResumeURL:   req.ResumeURL,
		Message:     req.Message,
		FormAnswers: req.FormAnswers,
		AppliedAt:   time.Now().UTC(),
	}
}

func toFormQuestions(reqs []validator.FormQuestionRequest) []models.FormQuestion {
	if len(reqs) == 0 {
		return nil
	}
	form := make([]models.FormQuestion, 0, len(reqs))
	for _, q := range reqs {
		inputType := models.FormInputType(q.InputType)
		if inputType == "" {
			inputType = models.InputText
		}
		form = append(form, models.FormQuestion{
			Question:  q.Question,
			InputType: inputType,
			Options:   q.Options,
		})
	}
	return form
}

func toSummary(i *models.Internship) InternshipSummary {
	return InternshipSummary{
		ID:              i.ID.Hex(),
		Title:           i.Title,
		Company:         i.Company,
		Field:           i.Field,
		Location:        i.Location,
		Remote:          i.Remote,
		Paid:            i.Paid,
		Description:     i.Description,
		Active:          i.Active,
		PostedBy:        i.PostedBy.Hex(),
		ApplicationForm: i.ApplicationForm,
		ApplicantCount:  len(i.Applicants),
		CreatedAt:       i.CreatedAt.UTC().Format(time.RFC3339),
	}
}
