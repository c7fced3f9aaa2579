package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	logger *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, logger *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a profile with no organization attached. The setup wizard
// creates the organization afterwards and attaches the caller as admin.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         models.RoleColaborador,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, orgIDOf(&user), user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, orgIDOf(&user), user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Identity is the raw authenticated identity from the token, independent of
// whether a profile row still exists for it.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// Session is the composite every screen reads: identity, profile and
// organization. Profile and organization degrade to nil instead of failing
// the session; a user without a profile row can still reach the setup flow.
type Session struct {
	User         Identity             `json:"user"`
	Profile      *models.User         `json:"profile"`
	Organization *models.Organization `json:"organization"`
}

// ResolveSession maps token claims to the current profile and organization
// rows. Organization resolution starts only after the profile resolves and
// only when it carries an organization reference; the two fetches are
// sequenced, never raced. Idempotent: the result reflects DB truth at call
// time, row values winning over stale claims.
func (s *Service) ResolveSession(ctx context.Context, claims *Claims) (*Session, error) {
	session := &Session{
		User: Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role},
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Authenticated without profile; not an error.
			return session, nil
		}
		return nil, err
	}
	session.Profile = &user
	session.User.Role = user.Role

	if user.OrganizationID == nil {
		return session, nil
	}

	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, *user.OrganizationID).Error; err != nil {
		// Degrade to "no organization" views rather than blocking the session.
		s.logger.Error("organization resolution failed",
			"user_id", user.ID,
			"organization_id", *user.OrganizationID,
			"error", err,
		)
		return session, nil
	}
	session.Organization = &org

	return session, nil
}

func orgIDOf(u *models.User) uuid.UUID {
	if u.OrganizationID != nil {
		return *u.OrganizationID
	}
	return uuid.Nil
}
