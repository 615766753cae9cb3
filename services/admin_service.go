package services

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/school-admin-api/model"
	"github.com/sahilchouksey/school-admin-api/utils/auth"
	"github.com/sahilchouksey/school-admin-api/utils/validation"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is wrapped by Login failures so callers can count them
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminService handles admin registration and authentication
type AdminService struct {
	db         *gorm.DB
	jwtManager *auth.JWTManager
	validator  *validation.Validator
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB, jwtManager *auth.JWTManager) *AdminService {
	return &AdminService{
		db:         db,
		jwtManager: jwtManager,
		validator:  validation.NewValidator(),
	}
}

// RegisterAdminInput represents the request to register an admin
type RegisterAdminInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar"`
}

// LoginInput represents the admin login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Admin       *model.Admin `json:"admin"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int64        `json:"expiresIn"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// Register creates an admin account and signs it in
func (s *AdminService) Register(ctx context.Context, input RegisterAdminInput) (*AuthResult, error) {
	input.Name = validation.SanitizeString(input.Name)
	input.Email = validation.SanitizeString(input.Email)
	input.Avatar = validation.SanitizeString(input.Avatar)

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}
	if ok, problems := validation.ValidatePassword(input.Password); !ok {
		return nil, validationError("%s", problems[0])
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Admin{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, internalError("AdminService", "Failed to check admin email", err)
	}
	if count > 0 {
		return nil, conflictError("Admin with email '%s' already exists", input.Email)
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, internalError("AdminService", "Failed to hash password", err)
	}

	admin := model.Admin{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Avatar:       input.Avatar,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, storeError("AdminService", "Admin", "Failed to create admin", err)
	}

	return s.issue(&admin)
}

// Login verifies credentials and returns a fresh access token
func (s *AdminService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = validation.SanitizeString(input.Email)

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.FormatValidationMessage(err))
	}

	var admin model.Admin
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, internalError("AdminService", "Failed to fetch admin", err)
	}

	if err := auth.VerifyPassword(admin.PasswordHash, input.Password); err != nil {
		return nil, invalidCredentials()
	}

	return s.issue(&admin)
}

// GetByID returns an admin account
func (s *AdminService) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	adminID, err := parseID(id, "admin")
	if err != nil {
		return nil, err
	}

	var admin model.Admin
	if err := s.db.WithContext(ctx).First(&admin, "id = ?", adminID).Error; err != nil {
		return nil, storeError("AdminService", "Admin", "Failed to fetch admin", err)
	}
	return &admin, nil
}

func (s *AdminService) issue(admin *model.Admin) (*AuthResult, error) {
	token, _, err := s.jwtManager.GenerateAccessToken(admin.ID, admin.Email)
	if err != nil {
		return nil, internalError("AdminService", "Failed to generate token", err)
	}

	return &AuthResult{
		Admin:       admin,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.Expiry().Seconds()),
		ExpiresAt:   time.Now().Add(s.jwtManager.Expiry()),
	}, nil
}

func invalidCredentials() error {
	return &Error{Kind: ErrUnauthorized, Message: "Invalid email or password", Err: ErrInvalidCredentials}
}
