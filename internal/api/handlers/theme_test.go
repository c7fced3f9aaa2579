package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/infinityvet/infinityvet/internal/api/handlers"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/infinityvet/infinityvet/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupThemeTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := handlers.NewThemeHandler(theme.NewService(tc.DB, logger))

	r := chi.NewRouter()
	r.Get("/api/v1/theme", handler.Get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Use(middleware.RequireRole(models.RoleSuperadmin))
		r.Post("/api/v1/theme", handler.Create)
		r.Put("/api/v1/theme", handler.Update)
	})

	return r, tc
}

func superadminToken(t *testing.T, tc *testutil.TestSetup) string {
	t.Helper()
	admin := testutil.CreateTestUser(t, tc.DB, tc.Org)
	tc.DB.Model(admin).Update("role", models.RoleSuperadmin)
	admin.Role = models.RoleSuperadmin
	return testutil.GenerateTestToken(t, tc.JWTService, admin)
}

func TestThemeHandler_Get(t *testing.T) {
	router, tc := setupThemeTestRouter(t)
	defer tc.Cleanup()

	t.Run("public, defaults before any row exists", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/theme", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.ThemeResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Persisted)
		assert.Equal(t, theme.Defaults().PrimaryColor, resp.Config.PrimaryColor)
		assert.Equal(t, "InfinityVet", resp.Config.AppTitle)
	})
}

func TestThemeHandler_Update(t *testing.T) {
	router, tc := setupThemeTestRouter(t)
	defer tc.Cleanup()

	token := superadminToken(t, tc)

	t.Run("update without a row fails and mutates nothing", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/theme", map[string]interface{}{
			"primary_color": "#ff0000",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var count int64
		tc.DB.Model(&models.ThemeConfig{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("create then update", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/theme", map[string]interface{}{
			"primary_color": "#16a34a",
			"app_title":     "InfinityVet",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		req = testutil.AuthenticatedRequest(t, "PUT", "/api/v1/theme", map[string]interface{}{
			"primary_color": "#ff0000",
		}, token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.ThemeConfig
		err := json.Unmarshal(rr.Body.Bytes(), &updated)
		require.NoError(t, err)
		assert.Equal(t, "#ff0000", updated.PrimaryColor)
		// Untouched field survives
		assert.Equal(t, "InfinityVet", updated.AppTitle)
	})

	t.Run("invalid hex color rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/theme", map[string]interface{}{
			"primary_color": "red",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-superadmin forbidden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/theme", map[string]interface{}{
			"primary_color": "#00ff00",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestThemeHandler_Create(t *testing.T) {
	router, tc := setupThemeTestRouter(t)
	defer tc.Cleanup()

	token := superadminToken(t, tc)

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/theme", map[string]interface{}{
		"primary_color": "#16a34a",
	}, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("second create conflicts", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/theme", map[string]interface{}{
			"primary_color": "#111111",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
