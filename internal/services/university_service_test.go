package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/events"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/validator"
)

type universityFixture struct {
	users     *memUserRepo
	postings  *memInternshipRepo
	provider  *fakeProvider
	publisher *events.MockEventPublisher
	svc       UniversityService
	principal auth.Principal
}

func newUniversityFixture() *universityFixture {
	users := newMemUserRepo()
	postings := newMemInternshipRepo()
	provider := newFakeProvider()
	publisher := events.NewMockEventPublisher()
	notify := NewNotificationEventService(publisher, testLogger())
	uni := users.add(&models.User{Email: "admin@uni.example", Role: models.RoleUniversity, Verified: true})
	return &universityFixture{
		users:     users,
		postings:  postings,
		provider:  provider,
		publisher: publisher,
		svc:       NewUniversityService(users, postings, provider, notify, testLogger()),
		principal: auth.Principal{UserID: uni.ID.Hex(), Role: models.RoleUniversity},
	}
}

func TestUniversity_RoleRequired(t *testing.T) {
	f := newUniversityFixture()
	student := auth.Principal{UserID: "x", Role: models.RoleStudent}

	_, err := f.svc.ListStudents(context.Background(), student, "", 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetStudentVerified_WriteThrough(t *testing.T) {
	f := newUniversityFixture()
	ctx := context.Background()
	student := f.users.add(&models.User{Email: "s@uni.example", Role: models.RoleStudent})
	f.provider.identities["tok"] = &identity.ExternalIdentity{Email: "s@uni.example"}

	pub, err := f.svc.SetStudentVerified(ctx, f.principal, student.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, pub.Verified)

	// Mirrored to the provider.
	ident, err := f.provider.GetUserByEmail(ctx, "s@uni.example")
	require.NoError(t, err)
	assert.True(t, ident.EmailVerified)

	types := publishedTypes(f.publisher)
	assert.Contains(t, types, events.TypeUserVerified)
}

func TestSetStudentVerified_ProviderFailureIsNotFatal(t *testing.T) {
	f := newUniversityFixture()
	ctx := context.Background()
	student := f.users.add(&models.User{Email: "s@uni.example", Role: models.RoleStudent})
	f.provider.writeErr = errors.New("provider down")

	pub, err := f.svc.SetStudentVerified(ctx, f.principal, student.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, pub.Verified)

	// Local flag stands even though the write-through failed.
	stored, err := f.users.GetByID(ctx, student.ID.Hex())
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.Equal(t, 1, f.provider.writeCalls)
}

func TestSetStudentVerified_TargetMustBeStudent(t *testing.T) {
	f := newUniversityFixture()
	employer := f.users.add(&models.User{Email: "e@corp.example", Role: models.RoleEmployer})

	_, err := f.svc.SetStudentVerified(context.Background(), f.principal, employer.ID.Hex(), true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBulkStudentLookup(t *testing.T) {
	f := newUniversityFixture()
	ctx := context.Background()

	s1 := f.users.add(&models.User{Email: "a@uni.example", Role: models.RoleStudent, Verified: true})
	s2 := f.users.add(&models.User{Email: "b@uni.example", Role: models.RoleStudent})
	f.users.add(&models.User{Email: "c@other.example", Role: models.RoleStudent})

	// One accepted application for s1.
	employer := f.users.add(&models.User{Email: "e@corp.example", Role: models.RoleEmployer, Verified: true})
	posting := &models.Internship{Company: "Acme", Title: "Intern", Active: true, PostedBy: employer.ID}
	require.NoError(t, f.postings.Create(ctx, posting))
	s1ID := s1.ID
	require.NoError(t, f.postings.AddApplication(ctx, posting.ID.Hex(), &models.Application{
		ID:        "app-1",
		Applicant: &s1ID,
		Status:    models.StatusAccepted,
	}))

	t.Run("by domain", func(t *testing.T) {
		result, err := f.svc.BulkStudentLookup(ctx, f.principal, validator.BulkStudentsRequest{Domain: "uni.example"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Matched)
		assert.Equal(t, 1, result.VerifiedCount)
		assert.Equal(t, 1, result.TotalApplications)
		assert.Equal(t, 1, result.TotalAccepted)

		for _, stats := range result.Students {
			switch stats.Student.ID {
			case s1.ID.Hex():
				assert.Equal(t, 1, stats.Total)
				assert.Equal(t, 1, stats.Accepted)
			case s2.ID.Hex():
				assert.Zero(t, stats.Total)
			}
		}
	})

	t.Run("by emails reports requested count", func(t *testing.T) {
		result, err := f.svc.BulkStudentLookup(ctx, f.principal, validator.BulkStudentsRequest{
			Emails: []string{"a@uni.example", "missing@uni.example"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Requested)
		assert.Equal(t, 1, result.Matched)
	})

	t.Run("requires exactly one selector", func(t *testing.T) {
		var verrs ValidationErrors

		_, err := f.svc.BulkStudentLookup(ctx, f.principal, validator.BulkStudentsRequest{})
		assert.ErrorAs(t, err, &verrs)

		_, err = f.svc.BulkStudentLookup(ctx, f.principal, validator.BulkStudentsRequest{
			Emails: []string{"a@uni.example"},
			Domain: "uni.example",
		})
		assert.ErrorAs(t, err, &verrs)
	})
}
