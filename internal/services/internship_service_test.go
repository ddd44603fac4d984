package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/cache"
	"github.com/InternBridge/internship-service/internal/events"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/validator"
)

type internshipFixture struct {
	users     *memUserRepo
	postings  *memInternshipRepo
	publisher *events.MockEventPublisher
	svc       InternshipService
}

func newInternshipFixture() *internshipFixture {
	users := newMemUserRepo()
	postings := newMemInternshipRepo()
	publisher := events.NewMockEventPublisher()
	notify := NewNotificationEventService(publisher, testLogger())
	svc := NewInternshipService(postings, users, notify, cache.NewCacheHelper(nil, "test:"), testLogger())
	return &internshipFixture{users: users, postings: postings, publisher: publisher, svc: svc}
}

func (f *internshipFixture) student(t *testing.T, email string, verified bool) (*models.User, auth.Principal) {
	t.Helper()
	u := f.users.add(&models.User{Email: email, Role: models.RoleStudent, Verified: verified})
	return u, auth.Principal{UserID: u.ID.Hex(), Role: models.RoleStudent}
}

func (f *internshipFixture) employer(t *testing.T, email string) (*models.User, auth.Principal) {
	t.Helper()
	u := f.users.add(&models.User{Email: email, Role: models.RoleEmployer, Verified: true})
	return u, auth.Principal{UserID: u.ID.Hex(), Role: models.RoleEmployer}
}

func (f *internshipFixture) posting(t *testing.T, owner auth.Principal) *models.Internship {
	t.Helper()
	internship, err := f.svc.Create(context.Background(), owner, validator.CreateInternshipRequest{
		Title:   "Backend Intern",
		Company: "Acme",
		Field:   "software",
	})
	require.NoError(t, err)
	return internship
}

func TestInternshipCreate_RequiresEmployer(t *testing.T) {
	f := newInternshipFixture()
	_, student := f.student(t, "s@uni.example", true)

	_, err := f.svc.Create(context.Background(), student, validator.CreateInternshipRequest{Company: "Acme"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInternshipMutations_UnverifiedEmployerBlocked(t *testing.T) {
	f := newInternshipFixture()
	emp, employer := f.employer(t, "e@corp.example")
	posting := f.posting(t, employer)

	require.NoError(t, f.users.SetVerified(context.Background(), emp.ID.Hex(), false))

	_, err := f.svc.Create(context.Background(), employer, validator.CreateInternshipRequest{Company: "Acme"})
	assert.ErrorIs(t, err, ErrUnverified)

	_, err = f.svc.Update(context.Background(), employer, posting.ID.Hex(), validator.UpdateInternshipRequest{})
	assert.ErrorIs(t, err, ErrUnverified)

	assert.ErrorIs(t, f.svc.Takedown(context.Background(), employer, posting.ID.Hex()), ErrUnverified)
	assert.ErrorIs(t, f.svc.Restore(context.Background(), employer, posting.ID.Hex()), ErrUnverified)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), employer, posting.ID.Hex()), ErrUnverified)

	require.NoError(t, f.users.SetVerified(context.Background(), emp.ID.Hex(), true))

	_, err = f.svc.Update(context.Background(), employer, posting.ID.Hex(), validator.UpdateInternshipRequest{})
	assert.NoError(t, err)
}

func TestInternshipMutations_AdminExemptFromVerification(t *testing.T) {
	f := newInternshipFixture()
	admin := f.users.add(&models.User{Email: "admin@ops.example", Role: models.RoleAdmin, Verified: false})
	principal := auth.Principal{UserID: admin.ID.Hex(), Role: models.RoleAdmin}

	posting, err := f.svc.Create(context.Background(), principal, validator.CreateInternshipRequest{
		Title:   "Ops Intern",
		Company: "Acme",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Takedown(context.Background(), principal, posting.ID.Hex()))
	require.NoError(t, f.svc.Restore(context.Background(), principal, posting.ID.Hex()))

	_, err = f.svc.Apply(context.Background(), principal, posting.ID.Hex(), validator.ApplyRequest{})
	assert.NoError(t, err)
}

func TestInternshipApply_HappyPathRewardsAndPublishes(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	student, studentPrincipal := f.student(t, "s@uni.example", true)
	posting := f.posting(t, employer)

	app, err := f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{
		University: "Example University",
		Message:    "please hire me",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusApplied, app.Status)

	// Reward: +5 points, streak 1, first-application badge.
	rewarded, err := f.users.GetByID(context.Background(), student.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 5, rewarded.Gamification.Points)
	assert.Equal(t, 1, rewarded.Gamification.ApplicationStreak)
	require.Len(t, rewarded.Gamification.Badges, 1)
	assert.Equal(t, "first_application", rewarded.Gamification.Badges[0].Key)

	types := publishedTypes(f.publisher)
	assert.Contains(t, types, events.TypeBadgeAwarded)
	assert.Contains(t, types, events.TypeApplicationSubmitted)
}

func TestInternshipApply_SecondApplicationNoBadge(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	student, studentPrincipal := f.student(t, "s@uni.example", true)
	first := f.posting(t, employer)
	second := f.posting(t, employer)

	_, err := f.svc.Apply(context.Background(), studentPrincipal, first.ID.Hex(), validator.ApplyRequest{})
	require.NoError(t, err)
	_, err = f.svc.Apply(context.Background(), studentPrincipal, second.ID.Hex(), validator.ApplyRequest{})
	require.NoError(t, err)

	rewarded, err := f.users.GetByID(context.Background(), student.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 10, rewarded.Gamification.Points)
	assert.Equal(t, 2, rewarded.Gamification.ApplicationStreak)
	assert.Len(t, rewarded.Gamification.Badges, 1)
}

func TestInternshipApply_UnverifiedStudentBlockedUntilVerified(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	student, studentPrincipal := f.student(t, "s@uni.example", false)
	posting := f.posting(t, employer)

	_, err := f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	assert.ErrorIs(t, err, ErrUnverified)

	require.NoError(t, f.users.SetVerified(context.Background(), student.ID.Hex(), true))

	_, err = f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	assert.NoError(t, err)
}

func TestInternshipApply_DuplicateLosesWithConflict(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	_, studentPrincipal := f.student(t, "s@uni.example", true)
	posting := f.posting(t, employer)

	_, err := f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	stored, err := f.postings.GetByID(context.Background(), posting.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, stored.Applicants, 1)
}

func TestInternshipApply_ConcurrentSubmissionsExactlyOneWins(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	_, studentPrincipal := f.student(t, "s@uni.example", true)
	posting := f.posting(t, employer)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyApplied)
		}
	}
	assert.Equal(t, 1, winners)

	stored, err := f.postings.GetByID(context.Background(), posting.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, stored.Applicants, 1)
}

func TestInternshipOwnership(t *testing.T) {
	f := newInternshipFixture()
	_, owner := f.employer(t, "owner@corp.example")
	_, rival := f.employer(t, "rival@corp.example")
	posting := f.posting(t, owner)

	t.Run("non-owner employer is rejected", func(t *testing.T) {
		err := f.svc.Takedown(context.Background(), rival, posting.ID.Hex())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin passes", func(t *testing.T) {
		admin := auth.Principal{UserID: "admin", Role: models.RoleAdmin}
		require.NoError(t, f.svc.Takedown(context.Background(), admin, posting.ID.Hex()))
		require.NoError(t, f.svc.Restore(context.Background(), admin, posting.ID.Hex()))
	})
}

func TestInternshipTakedownRestore_ApplicantsUntouched(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	_, studentPrincipal := f.student(t, "s@uni.example", true)
	posting := f.posting(t, employer)

	_, err := f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Takedown(context.Background(), employer, posting.ID.Hex()))

	// Hidden from anonymous readers while inactive.
	_, err = f.svc.Get(context.Background(), nil, posting.ID.Hex())
	assert.ErrorIs(t, err, ErrInternshipNotFound)

	// Cannot apply while inactive.
	_, otherStudent := f.student(t, "s2@uni.example", true)
	_, err = f.svc.Apply(context.Background(), otherStudent, posting.ID.Hex(), validator.ApplyRequest{})
	assert.ErrorIs(t, err, ErrInternshipNotFound)

	require.NoError(t, f.svc.Restore(context.Background(), employer, posting.ID.Hex()))

	restored, err := f.svc.Get(context.Background(), nil, posting.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, restored.Applicants, 1)
}

func TestInternshipList_InactiveVisibility(t *testing.T) {
	f := newInternshipFixture()
	_, owner := f.employer(t, "owner@corp.example")
	posting := f.posting(t, owner)
	require.NoError(t, f.svc.Takedown(context.Background(), owner, posting.ID.Hex()))

	t.Run("anonymous sees nothing", func(t *testing.T) {
		list, err := f.svc.List(context.Background(), nil, validator.ListInternshipsRequest{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("owner listing own sees inactive", func(t *testing.T) {
		list, err := f.svc.List(context.Background(), &owner, validator.ListInternshipsRequest{PostedBy: owner.UserID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].Active)
	})

	t.Run("admin sees inactive", func(t *testing.T) {
		admin := auth.Principal{UserID: "admin", Role: models.RoleAdmin}
		list, err := f.svc.List(context.Background(), &admin, validator.ListInternshipsRequest{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	f := newInternshipFixture()
	_, employer := f.employer(t, "e@corp.example")
	student, studentPrincipal := f.student(t, "s@uni.example", true)
	posting := f.posting(t, employer)

	app, err := f.svc.Apply(context.Background(), studentPrincipal, posting.ID.Hex(), validator.ApplyRequest{})
	require.NoError(t, err)

	err = f.svc.UpdateApplicationStatus(context.Background(), employer, posting.ID.Hex(), app.ID,
		validator.UpdateApplicationStatusRequest{Status: "accepted"})
	require.NoError(t, err)

	views, err := f.svc.StudentApplications(context.Background(), studentPrincipal, student.ID.Hex())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.StatusAccepted, views[0].Application.Status)

	t.Run("unknown application id", func(t *testing.T) {
		err := f.svc.UpdateApplicationStatus(context.Background(), employer, posting.ID.Hex(), "missing",
			validator.UpdateApplicationStatusRequest{Status: "rejected"})
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})
}

func TestStudentApplications_AccessControl(t *testing.T) {
	f := newInternshipFixture()
	student, studentPrincipal := f.student(t, "s@uni.example", true)
	_, other := f.student(t, "other@uni.example", true)

	_, err := f.svc.StudentApplications(context.Background(), other, student.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	university := auth.Principal{UserID: "uni", Role: models.RoleUniversity}
	_, err = f.svc.StudentApplications(context.Background(), university, student.ID.Hex())
	assert.NoError(t, err)

	_, err = f.svc.StudentApplications(context.Background(), studentPrincipal, student.ID.Hex())
	assert.NoError(t, err)
}

func publishedTypes(p *events.MockEventPublisher) []string {
	var types []string
	for _, e := range p.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	return types
}
