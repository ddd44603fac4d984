package services

import (
	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/cache"
	"github.com/InternBridge/internship-service/internal/events"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
)

// ServiceManager wires every service over one shared set of dependencies.
type ServiceManager struct {
	Auth       AuthService
	Internship InternshipService
	User       UserService
	University UniversityService
	Admin      AdminService
	Notify     NotificationEventService
}

type ManagerDeps struct {
	Repo       repositories.Repository
	Passwords  *auth.PasswordService
	Tokens     *auth.TokenService
	Reconciler *auth.Reconciler
	Provider   identity.Provider
	Publisher  events.EventPublisher
	Cache      *cache.CacheHelper
	Logger     utils.Logger
}

func NewServiceManager(deps ManagerDeps) *ServiceManager {
	notify := NewNotificationEventService(deps.Publisher, deps.Logger)
	users := deps.Repo.User()
	internships := deps.Repo.Internship()

	return &ServiceManager{
		Auth:       NewAuthService(users, deps.Passwords, deps.Tokens, deps.Reconciler, deps.Logger),
		Internship: NewInternshipService(internships, users, notify, deps.Cache, deps.Logger),
		User:       NewUserService(users, deps.Logger),
		University: NewUniversityService(users, internships, deps.Provider, notify, deps.Logger),
		Admin:      NewAdminService(users, deps.Provider, deps.Logger),
		Notify:     notify,
	}
}

// Close releases resources held by the services, currently the event
// publisher connection.
func (m *ServiceManager) Close() error {
	return m.Notify.Close()
}
