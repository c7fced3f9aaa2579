package theme_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/infinityvet/infinityvet/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *theme.Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return theme.NewService(db, logger)
}

func strPtr(s string) *string { return &s }

func TestService_Load(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	t.Run("no row yields defaults, not persisted", func(t *testing.T) {
		cfg, persisted, err := svc.Load(ctx)
		require.NoError(t, err)
		assert.False(t, persisted)
		assert.Equal(t, theme.Defaults(), cfg)
	})

	t.Run("persisted row wins over defaults", func(t *testing.T) {
		_, err := svc.Create(ctx, models.ThemeConfig{
			PrimaryColor: "#123456",
			AppTitle:     "Minha Clinica",
		})
		require.NoError(t, err)

		cfg, persisted, err := svc.Load(ctx)
		require.NoError(t, err)
		assert.True(t, persisted)
		assert.Equal(t, "#123456", cfg.PrimaryColor)
		assert.Equal(t, "Minha Clinica", cfg.AppTitle)
	})
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	_, err := svc.Create(ctx, models.ThemeConfig{PrimaryColor: "#111111"})
	require.NoError(t, err)

	t.Run("second create conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, models.ThemeConfig{PrimaryColor: "#222222"})
		assert.Equal(t, theme.ErrAlreadyExists, err)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("fails without a row and mutates nothing", func(t *testing.T) {
		svc := newTestService(t)
		ctx := testutil.TestContext(t)

		_, err := svc.Update(ctx, theme.UpdateInput{PrimaryColor: strPtr("#abcdef")})
		assert.Equal(t, theme.ErrNotFound, err)

		// Still no row, still defaults
		_, persisted, err := svc.Load(ctx)
		require.NoError(t, err)
		assert.False(t, persisted)
	})

	t.Run("partial update keeps unset fields", func(t *testing.T) {
		svc := newTestService(t)
		ctx := testutil.TestContext(t)

		_, err := svc.Create(ctx, models.ThemeConfig{
			PrimaryColor: "#111111",
			AppTitle:     "InfinityVet",
			LayoutMode:   "sidebar",
		})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, theme.UpdateInput{
			PrimaryColor: strPtr("#222222"),
		})
		require.NoError(t, err)
		assert.Equal(t, "#222222", updated.PrimaryColor)
		assert.Equal(t, "InfinityVet", updated.AppTitle)
		assert.Equal(t, "sidebar", updated.LayoutMode)
	})
}
