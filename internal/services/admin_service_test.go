package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/models"
)

func newAdminFixture() (AdminService, *memUserRepo, *fakeProvider) {
	users := newMemUserRepo()
	provider := newFakeProvider()
	return NewAdminService(users, provider, testLogger()), users, provider
}

func TestCheckProviderUser(t *testing.T) {
	svc, users, provider := newAdminFixture()
	ctx := context.Background()

	t.Run("absent everywhere", func(t *testing.T) {
		check, err := svc.CheckProviderUser(ctx, "ghost@uni.example")
		require.NoError(t, err)
		assert.False(t, check.Found)
		assert.Nil(t, check.Local)
	})

	t.Run("provider only", func(t *testing.T) {
		provider.identities["t1"] = &identity.ExternalIdentity{Email: "p@uni.example", EmailVerified: true}
		check, err := svc.CheckProviderUser(ctx, "p@uni.example")
		require.NoError(t, err)
		assert.True(t, check.Found)
		assert.Nil(t, check.Local)
	})

	t.Run("both sides", func(t *testing.T) {
		users.add(&models.User{Email: "p@uni.example", Role: models.RoleStudent})
		check, err := svc.CheckProviderUser(ctx, "p@uni.example")
		require.NoError(t, err)
		assert.True(t, check.Found)
		require.NotNil(t, check.Local)
		assert.Equal(t, "p@uni.example", check.Local.Email)
	})
}

func TestToggleVerified_FlipsAndSyncsLocal(t *testing.T) {
	svc, users, provider := newAdminFixture()
	ctx := context.Background()

	provider.identities["t1"] = &identity.ExternalIdentity{Email: "s@uni.example", EmailVerified: true}
	local := users.add(&models.User{Email: "s@uni.example", Role: models.RoleStudent, Verified: true})

	// Flip down: this path may demote.
	check, err := svc.ToggleVerified(ctx, "s@uni.example")
	require.NoError(t, err)
	assert.False(t, check.Identity.EmailVerified)
	require.NotNil(t, check.Local)
	assert.False(t, check.Local.Verified)

	stored, err := users.GetByID(ctx, local.ID.Hex())
	require.NoError(t, err)
	assert.False(t, stored.Verified)

	// Flip back up.
	check, err = svc.ToggleVerified(ctx, "s@uni.example")
	require.NoError(t, err)
	assert.True(t, check.Identity.EmailVerified)
}

func TestToggleVerified_UnknownProviderUser(t *testing.T) {
	svc, _, _ := newAdminFixture()

	_, err := svc.ToggleVerified(context.Background(), "ghost@uni.example")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminSetRoleAndDelete(t *testing.T) {
	svc, users, _ := newAdminFixture()
	ctx := context.Background()
	u := users.add(&models.User{Email: "s@uni.example", Role: models.RoleStudent})

	pub, err := svc.SetRole(ctx, u.ID.Hex(), models.RoleUniversity)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUniversity, pub.Role)

	var verrs ValidationErrors
	_, err = svc.SetRole(ctx, u.ID.Hex(), models.UserRole("wizard"))
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, svc.DeleteUser(ctx, u.ID.Hex()))
	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID.Hex()), ErrUserNotFound)
}
