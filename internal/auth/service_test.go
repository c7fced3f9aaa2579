package auth_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/infinityvet/infinityvet/internal/auth"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*auth.Service, *testutil.TestSetup) {
	t.Helper()
	tc := testutil.NewTestContext(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(tc.DB, tc.JWTService, logger), tc
}

func TestService_Register(t *testing.T) {
	svc, tc := newTestService(t)
	defer tc.Cleanup()
	ctx := testutil.TestContext(t)

	t.Run("creates profile without organization", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "novo@example.com",
			Password: "password123",
			Name:     "Novo Usuario",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		// The setup wizard attaches the organization later
		assert.Nil(t, resp.User.OrganizationID)
		assert.Equal(t, "colaborador", resp.User.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "novo@example.com",
			Password: "password123",
			Name:     "Outro Usuario",
		})
		assert.Equal(t, auth.ErrUserExists, err)
	})
}

func TestService_Login(t *testing.T) {
	svc, tc := newTestService(t)
	defer tc.Cleanup()
	ctx := testutil.TestContext(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "testpassword123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, tc.User.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "wrong-password",
		})
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "missing@example.com",
			Password: "testpassword123",
		})
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("inactive account", func(t *testing.T) {
		tc.DB.Model(tc.User).Update("is_active", false)
		defer tc.DB.Model(tc.User).Update("is_active", true)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    tc.User.Email,
			Password: "testpassword123",
		})
		assert.Equal(t, auth.ErrInactiveUser, err)
	})
}

func TestService_ResolveSession(t *testing.T) {
	svc, tc := newTestService(t)
	defer tc.Cleanup()
	ctx := testutil.TestContext(t)

	claims, err := tc.JWTService.ValidateToken(tc.Token)
	require.NoError(t, err)

	t.Run("full session", func(t *testing.T) {
		session, err := svc.ResolveSession(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, tc.User.ID, session.User.UserID)
		require.NotNil(t, session.Profile)
		assert.Equal(t, tc.User.ID, session.Profile.ID)
		require.NotNil(t, session.Organization)
		assert.Equal(t, tc.Org.ID, session.Organization.ID)
	})

	t.Run("role comes from the profile row, not the token", func(t *testing.T) {
		tc.DB.Model(tc.User).Update("role", "veterinario")
		defer tc.DB.Model(tc.User).Update("role", "admin")

		session, err := svc.ResolveSession(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, "veterinario", session.User.Role)
	})

	t.Run("profile without organization", func(t *testing.T) {
		tc.DB.Model(&models.User{}).Where("id = ?", tc.User.ID).Update("organization_id", nil)
		defer tc.DB.Model(tc.User).Update("organization_id", tc.Org.ID)

		session, err := svc.ResolveSession(ctx, claims)
		require.NoError(t, err)
		require.NotNil(t, session.Profile)
		assert.Nil(t, session.Organization)
	})

	t.Run("missing profile still yields a session", func(t *testing.T) {
		// Hard-delete the profile row; the token is still valid
		tc.DB.Unscoped().Delete(tc.User)

		session, err := svc.ResolveSession(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, tc.User.ID, session.User.UserID)
		assert.Nil(t, session.Profile)
		assert.Nil(t, session.Organization)
	})
}
