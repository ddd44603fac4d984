package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
)

type userService struct {
	users  repositories.UserRepository
	logger utils.Logger
}

func NewUserService(users repositories.UserRepository, logger utils.Logger) UserService {
	return &userService{users: users, logger: logger}
}

// GetProfile returns the public profile of any user. Callers only ever see
// the public projection, so no access check beyond authentication is needed.
func (s *userService) GetProfile(ctx context.Context, _ auth.Principal, userID string) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateProfile replaces the caller's own profile sections. Only sections
// present in the request are written; absent ones keep their stored value.
func (s *userService) UpdateProfile(ctx context.Context, principal auth.Principal, req validator.UpdateProfileRequest) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	profile := user.Profile
	if req.Skills != nil {
		profile.Skills = req.Skills
	}
	if req.Certifications != nil {
		profile.Certifications = req.Certifications
	}
	if req.Education != nil {
		education := make([]models.Education, 0, len(req.Education))
		for _, e := range req.Education {
			education = append(education, models.Education{
				Institution: e.Institution,
				Degree:      e.Degree,
				Year:        e.Year,
			})
		}
		profile.Education = education
	}
	if req.Projects != nil {
		projects := make([]models.Project, 0, len(req.Projects))
		for _, p := range req.Projects {
			projects = append(projects, models.Project{
				Title:       p.Title,
				Link:        p.Link,
				Description: p.Description,
			})
		}
		profile.Projects = projects
	}

	if err := s.users.UpdateProfile(ctx, principal.UserID, profile); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	user.Profile = profile
	pub := user.Public()
	return &pub, nil
}
