package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/api/handlers"
	"github.com/infinityvet/infinityvet/internal/api/middleware"
	"github.com/infinityvet/infinityvet/internal/auth"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrgTestRouter(t *testing.T) (*chi.Mux, *gorm.DB, *auth.JWTService) {
	db := testutil.SetupTestDB(t)
	jwtService := testutil.CreateTestJWTService()

	r := chi.NewRouter()
	r.Use(middleware.Auth(jwtService))

	handler := handlers.NewOrganizationHandler(db)
	r.Post("/api/v1/organizations", handler.Create)
	r.Route("/api/v1/organizations/current", func(r chi.Router) {
		r.Use(middleware.RequireOrganization)
		r.Get("/", handler.Current)
		r.Put("/plan", handler.ChangePlan)
	})

	return r, db, jwtService
}

// createOrphanUser creates a registered profile that has not run the setup
// wizard yet.
func createOrphanUser(t *testing.T, db *gorm.DB, jwtService *auth.JWTService) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	require.NoError(t, err)

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "orphan-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Sem Organizacao",
		Role:         models.RoleColaborador,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	token, err := jwtService.GenerateToken(user.ID, uuid.Nil, user.Email, user.Role)
	require.NoError(t, err)

	return user, token
}

func TestOrganizationHandler_Create(t *testing.T) {
	router, db, jwtService := setupOrgTestRouter(t)
	defer testutil.CleanupTestDB(t, db)

	user, token := createOrphanUser(t, db, jwtService)

	t.Run("setup wizard derives limits from the plan catalog", func(t *testing.T) {
		// Submitted limit fields must be ignored
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", map[string]interface{}{
			"name":                "Fazenda Boa Vista",
			"type":                "fazenda",
			"plan":                "free",
			"limite_animais":      9999,
			"limite_funcionarios": 9999,
			"limite_produtos":     9999,
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var org models.Organization
		err := json.Unmarshal(rr.Body.Bytes(), &org)
		require.NoError(t, err)
		assert.Equal(t, "free", org.Plan)
		assert.Equal(t, 10, org.LimiteAnimais)
		assert.Equal(t, 2, org.LimiteFuncionarios)
		assert.Equal(t, 5, org.LimiteProdutos)

		// Caller is attached as admin
		var updated models.User
		require.NoError(t, db.First(&updated, user.ID).Error)
		require.NotNil(t, updated.OrganizationID)
		assert.Equal(t, org.ID, *updated.OrganizationID)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("second organization conflicts", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", map[string]interface{}{
			"name": "Outra Fazenda",
			"type": "fazenda",
			"plan": "free",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid plan rejected", func(t *testing.T) {
		_, otherToken := createOrphanUser(t, db, jwtService)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", map[string]interface{}{
			"name": "Plano Errado",
			"type": "fazenda",
			"plan": "platinum",
		}, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		_, otherToken := createOrphanUser(t, db, jwtService)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", map[string]interface{}{
			"name": "Tipo Errado",
			"type": "startup",
			"plan": "free",
		}, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrganizationHandler_Current(t *testing.T) {
	router, db, jwtService := setupOrgTestRouter(t)
	defer testutil.CleanupTestDB(t, db)

	org := testutil.CreateTestOrg(t, db)
	user := testutil.CreateTestUser(t, db, org)
	token := testutil.GenerateTestToken(t, jwtService, user)

	testutil.CreateTestAnimal(t, db, org.ID, "Mimosa")
	testutil.CreateTestAnimal(t, db, org.ID, "Estrela")
	testutil.CreateTestProduct(t, db, org.ID, "Ivermectina", 10, 2)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/organizations/current", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CurrentOrganizationResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, org.ID, resp.Organization.ID)
	assert.Equal(t, int64(2), resp.Usage.Animais)
	assert.Equal(t, int64(1), resp.Usage.Funcionarios)
	assert.Equal(t, int64(1), resp.Usage.Produtos)
}

func TestOrganizationHandler_ChangePlan(t *testing.T) {
	router, db, jwtService := setupOrgTestRouter(t)
	defer testutil.CleanupTestDB(t, db)

	org := testutil.CreateTestOrg(t, db)
	user := testutil.CreateTestUser(t, db, org)
	token := testutil.GenerateTestToken(t, jwtService, user)

	t.Run("upgrade re-derives ceilings", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/organizations/current/plan", map[string]interface{}{
			"plan": "pro",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.Organization
		require.NoError(t, db.First(&updated, org.ID).Error)
		assert.Equal(t, "pro", updated.Plan)
		assert.Equal(t, 100, updated.LimiteAnimais)
		assert.Equal(t, 10, updated.LimiteFuncionarios)
		assert.Equal(t, 50, updated.LimiteProdutos)
	})

	t.Run("enterprise is unlimited", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/organizations/current/plan", map[string]interface{}{
			"plan": "enterprise",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.Organization
		require.NoError(t, db.First(&updated, org.ID).Error)
		assert.Equal(t, -1, updated.LimiteAnimais)
	})

	t.Run("unknown plan rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/organizations/current/plan", map[string]interface{}{
			"plan": "platinum",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
