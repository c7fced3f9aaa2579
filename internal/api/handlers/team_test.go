package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/dto"
	"github.com/infinityvet/infinityvet/internal/api/handlers"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTeamTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService))
	r.Use(middleware.RequireOrganization)

	handler := handlers.NewTeamHandler(tc.DB)
	r.Route("/api/v1/team", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
			r.Post("/", handler.Invite)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Remove)
		})
	})

	return r, tc
}

func TestTeamHandler_Invite(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	t.Run("invite member", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team", map[string]interface{}{
			"email":    "vet@example.com",
			"name":     "Dra. Souza",
			"password": "password123",
			"role":     "veterinario",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var member dto.UserDTO
		err := json.Unmarshal(rr.Body.Bytes(), &member)
		require.NoError(t, err)
		assert.Equal(t, "veterinario", member.Role)
		assert.Equal(t, tc.Org.ID.String(), member.OrganizationID)
	})

	t.Run("staff ceiling blocks the third member", func(t *testing.T) {
		// Free plan allows 2 staff; the admin and the vet fill it
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team", map[string]interface{}{
			"email":    "extra@example.com",
			"name":     "Extra",
			"password": "password123",
			"role":     "colaborador",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("superadmin role cannot be granted", func(t *testing.T) {
		tc.DB.Model(tc.Org).Update("limite_funcionarios", -1)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team", map[string]interface{}{
			"email":    "root@example.com",
			"name":     "Root",
			"password": "password123",
			"role":     "superadmin",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team", map[string]interface{}{
			"email":    "vet@example.com",
			"name":     "Duplicada",
			"password": "password123",
			"role":     "colaborador",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("non-admin cannot invite", func(t *testing.T) {
		colaborador := testutil.CreateTestUser(t, tc.DB, tc.Org)
		tc.DB.Model(colaborador).Update("role", models.RoleColaborador)
		colaborador.Role = models.RoleColaborador
		token := testutil.GenerateTestToken(t, tc.JWTService, colaborador)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team", map[string]interface{}{
			"email":    "mais-um@example.com",
			"name":     "Mais Um",
			"password": "password123",
			"role":     "colaborador",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTeamHandler_List(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	testutil.CreateTestUser(t, tc.DB, tc.Org)

	// A member of another org must not appear
	otherOrg := testutil.CreateTestOrg(t, tc.DB)
	testutil.CreateTestUser(t, tc.DB, otherOrg)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/team", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp dto.ListResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}

func TestTeamHandler_Update(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	member := testutil.CreateTestUser(t, tc.DB, tc.Org)
	tc.DB.Model(member).Update("role", models.RoleColaborador)

	t.Run("change role", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/team/"+member.ID.String(), map[string]interface{}{
			"role": "veterinario",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.User
		require.NoError(t, tc.DB.First(&updated, member.ID).Error)
		assert.Equal(t, "veterinario", updated.Role)
	})

	t.Run("organization type is not a role", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/team/"+member.ID.String(), map[string]interface{}{
			"role": "fazenda",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("cannot modify self", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/team/"+tc.User.ID.String(), map[string]interface{}{
			"role": "colaborador",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown member", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/team/"+uuid.New().String(), map[string]interface{}{
			"role": "colaborador",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTeamHandler_Remove(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	member := testutil.CreateTestUser(t, tc.DB, tc.Org)

	t.Run("deactivates instead of deleting", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/team/"+member.ID.String(), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.User
		require.NoError(t, tc.DB.First(&updated, member.ID).Error)
		assert.False(t, updated.IsActive)
	})

	t.Run("cannot remove self", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/team/"+tc.User.ID.String(), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
