package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/auth"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/plan"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Animal{},
		&models.Vaccination{},
		&models.Product{},
		&models.Lot{},
		&models.Event{},
		&models.PerformanceTest{},
		&models.Notification{},
		&models.ReminderSchedule{},
		&models.ThemeConfig{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestOrg creates a test organization on the free plan, with ceilings
// taken from the plan catalog.
func CreateTestOrg(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()

	limits, err := plan.LimitsFor(plan.Free)
	if err != nil {
		t.Fatalf("failed to resolve plan limits: %v", err)
	}

	org := &models.Organization{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:               "Fazenda Teste",
		Type:               models.OrgTypeFazenda,
		Plan:               plan.Free,
		LimiteAnimais:      limits.Animais,
		LimiteFuncionarios: limits.Funcionarios,
		LimiteProdutos:     limits.Produtos,
	}

	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateTestUser creates a test user attached to the given organization
func CreateTestUser(t *testing.T, db *gorm.DB, org *models.Organization) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:          "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:   hash,
		Name:           "Test User",
		OrganizationID: &org.ID,
		Role:           models.RoleAdmin,
		IsActive:       true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Organization = org
	return user
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	orgID := uuid.Nil
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}

	token, err := jwtService.GenerateToken(user.ID, orgID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// CreateTestAnimal creates a test animal
func CreateTestAnimal(t *testing.T, db *gorm.DB, orgID uuid.UUID, nome string) *models.Animal {
	t.Helper()

	animal := &models.Animal{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Nome:           nome,
		Especie:        "bovino",
		Raca:           "nelore",
		Identificacao:  "BR-" + uuid.New().String()[:8],
		Sexo:           "femea",
		PesoAtual:      300,
		Status:         models.AnimalStatusAtivo,
	}

	if err := db.Create(animal).Error; err != nil {
		t.Fatalf("failed to create test animal: %v", err)
	}

	return animal
}

// CreateTestVaccination creates a test vaccination, optionally with a booster
// scheduled for the given date.
func CreateTestVaccination(t *testing.T, db *gorm.DB, orgID, animalID uuid.UUID, reforco *time.Time) *models.Vaccination {
	t.Helper()

	vaccination := &models.Vaccination{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID:  orgID,
		AnimalID:        animalID,
		Vacina:          "Febre Aftosa",
		DataAplicacao:   time.Now().AddDate(0, -1, 0),
		ReforcoPrevisto: reforco,
		Veterinario:     "Dr. Teste",
	}

	if err := db.Create(vaccination).Error; err != nil {
		t.Fatalf("failed to create test vaccination: %v", err)
	}

	return vaccination
}

// CreateTestProduct creates a test product with the given stock levels
func CreateTestProduct(t *testing.T, db *gorm.DB, orgID uuid.UUID, nome string, quantidade, minimo float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Nome:           nome,
		Categoria:      "vacina",
		Quantidade:     quantidade,
		Unidade:        "dose",
		EstoqueMinimo:  minimo,
	}

	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}

	return product
}

// CreateTestSchedule creates a test reminder schedule
func CreateTestSchedule(t *testing.T, db *gorm.DB, orgID uuid.UUID, name, cronExpr string) *models.ReminderSchedule {
	t.Helper()

	now := time.Now()
	schedule := &models.ReminderSchedule{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Name:           name,
		CronExpr:       cronExpr,
		IsEnabled:      true,
		NextRunAt:      now.Add(time.Hour).Unix(),
	}

	if err := db.Create(schedule).Error; err != nil {
		t.Fatalf("failed to create test schedule: %v", err)
	}

	return schedule
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Org        *models.Organization
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, org, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	org := CreateTestOrg(t, db)
	user := CreateTestUser(t, db, org)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Org:        org,
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
