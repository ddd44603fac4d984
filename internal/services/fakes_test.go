package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
	"github.com/InternBridge/internship-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ===== USER REPO FAKE =====

// memUserRepo mirrors the mongo repository's semantics in memory: unique
// email, atomic per-call updates under one mutex.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *memUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = u
	return u
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id string, profile models.Profile) error {
	return r.update(id, func(u *models.User) { u.Profile = profile })
}

func (r *memUserRepo) SetVerified(_ context.Context, id string, verified bool) error {
	return r.update(id, func(u *models.User) { u.Verified = verified })
}

func (r *memUserRepo) SetRole(_ context.Context, id string, role models.UserRole) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *memUserRepo) AddApplicationReward(_ context.Context, id string, points int, badgeKey string) error {
	return r.update(id, func(u *models.User) {
		u.Gamification.Points += points
		u.Gamification.ApplicationStreak++
		if badgeKey != "" {
			u.Gamification.Badges = append(u.Gamification.Badges, models.Badge{
				Key:       badgeKey,
				AwardedAt: time.Now(),
			})
		}
	})
}

func (r *memUserRepo) ListStudents(_ context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.Query != "" && !strings.Contains(u.Email, filters.Query) {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memUserRepo) FindStudentsByEmails(_ context.Context, emails []string) ([]*models.User, error) {
	wanted := map[string]bool{}
	for _, e := range emails {
		wanted[strings.ToLower(strings.TrimSpace(e))] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == models.RoleStudent && wanted[u.Email] {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memUserRepo) FindStudentsByDomain(_ context.Context, domain string) ([]*models.User, error) {
	domain = strings.TrimLeft(strings.TrimSpace(domain), "*@ ")
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == models.RoleStudent && strings.HasSuffix(u.Email, "@"+domain) {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, oid)
	return nil
}

func (r *memUserRepo) update(id string, fn func(*models.User)) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	return nil
}

// ===== INTERNSHIP REPO FAKE =====

type memInternshipRepo struct {
	mu       sync.Mutex
	postings map[primitive.ObjectID]*models.Internship
}

func newMemInternshipRepo() *memInternshipRepo {
	return &memInternshipRepo{postings: map[primitive.ObjectID]*models.Internship{}}
}

func (r *memInternshipRepo) Create(_ context.Context, internship *models.Internship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	internship.ID = primitive.NewObjectID()
	internship.CreatedAt = time.Now()
	if internship.Applicants == nil {
		internship.Applicants = []models.Application{}
	}
	stored := *internship
	r.postings[internship.ID] = &stored
	return nil
}

func (r *memInternshipRepo) GetByID(_ context.Context, id string) (*models.Internship, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := r.deepCopy(p)
	return copied, nil
}

func (r *memInternshipRepo) List(_ context.Context, filters repositories.InternshipFilters) ([]*models.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Internship
	for _, p := range r.postings {
		if filters.Active != nil && p.Active != *filters.Active {
			continue
		}
		if filters.Field != nil && p.Field != *filters.Field {
			continue
		}
		if filters.PostedBy != nil && p.PostedBy.Hex() != *filters.PostedBy {
			continue
		}
		out = append(out, r.deepCopy(p))
	}
	return out, nil
}

func (r *memInternshipRepo) Update(_ context.Context, id string, update repositories.InternshipUpdate) error {
	return r.withPosting(id, func(p *models.Internship) error {
		if update.Title != nil {
			p.Title = *update.Title
		}
		if update.Company != nil {
			p.Company = *update.Company
		}
		if update.Description != nil {
			p.Description = *update.Description
		}
		if update.Field != nil {
			p.Field = *update.Field
		}
		if update.Location != nil {
			p.Location = *update.Location
		}
		if update.Remote != nil {
			p.Remote = *update.Remote
		}
		if update.Paid != nil {
			p.Paid = *update.Paid
		}
		if update.ApplicationForm != nil {
			p.ApplicationForm = *update.ApplicationForm
		}
		return nil
	})
}

func (r *memInternshipRepo) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.postings[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.postings, oid)
	return nil
}

func (r *memInternshipRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.withPosting(id, func(p *models.Internship) error {
		p.Active = active
		return nil
	})
}

// AddApplication reproduces the guarded single-document push: under the
// mutex, a second application by the same user loses with ErrDuplicate.
func (r *memInternshipRepo) AddApplication(_ context.Context, postingID string, app *models.Application) error {
	return r.withPosting(postingID, func(p *models.Internship) error {
		for _, existing := range p.Applicants {
			if existing.Applicant != nil && app.Applicant != nil && *existing.Applicant == *app.Applicant {
				return repositories.ErrDuplicate
			}
		}
		p.Applicants = append(p.Applicants, *app)
		return nil
	})
}

func (r *memInternshipRepo) UpdateApplicationStatus(_ context.Context, postingID, applicationID string, status models.ApplicationStatus) error {
	return r.withPosting(postingID, func(p *models.Internship) error {
		for i := range p.Applicants {
			if p.Applicants[i].ID == applicationID {
				p.Applicants[i].Status = status
				return nil
			}
		}
		return repositories.ErrNotFound
	})
}

func (r *memInternshipRepo) FindByApplicant(_ context.Context, userID string) ([]*models.Internship, error) {
	return r.FindByApplicants(context.Background(), []string{userID})
}

func (r *memInternshipRepo) FindByApplicants(_ context.Context, userIDs []string) ([]*models.Internship, error) {
	wanted := map[string]bool{}
	for _, id := range userIDs {
		wanted[id] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Internship
	for _, p := range r.postings {
		for _, app := range p.Applicants {
			if app.Applicant != nil && wanted[app.Applicant.Hex()] {
				out = append(out, r.deepCopy(p))
				break
			}
		}
	}
	return out, nil
}

func (r *memInternshipRepo) withPosting(id string, fn func(*models.Internship) error) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[oid]
	if !ok {
		return repositories.ErrNotFound
	}
	return fn(p)
}

func (r *memInternshipRepo) deepCopy(p *models.Internship) *models.Internship {
	copied := *p
	copied.Applicants = append([]models.Application(nil), p.Applicants...)
	copied.ApplicationForm = append([]models.FormQuestion(nil), p.ApplicationForm...)
	return &copied
}

// ===== PROVIDER FAKE =====

type fakeProvider struct {
	mu         sync.Mutex
	identities map[string]*identity.ExternalIdentity
	writeErr   error
	writeCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{identities: map[string]*identity.ExternalIdentity{}}
}

func (f *fakeProvider) Configured() bool { return true }

func (f *fakeProvider) VerifyToken(_ context.Context, token string) (*identity.ExternalIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ident, ok := f.identities[token]; ok {
		return ident, nil
	}
	return nil, identity.ErrInvalidToken
}

func (f *fakeProvider) GetUserByEmail(_ context.Context, email string) (*identity.ExternalIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ident := range f.identities {
		if ident.Email == email {
			return ident, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeProvider) SetEmailVerified(_ context.Context, email string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, ident := range f.identities {
		if ident.Email == email {
			ident.EmailVerified = verified
			return nil
		}
	}
	return identity.ErrUserNotFound
}

func (f *fakeProvider) ListUsers(_ context.Context, _, _ int) ([]*identity.ExternalIdentity, int, error) {
	return nil, 0, nil
}
