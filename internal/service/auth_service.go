package service

import (
	"context"
	"errors"
	"strings"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/jwt"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	msgInvalidCredentials = "Invalid username/email or password"
	msgSessionExpired     = "Session expired, please log in again"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// Authenticate resolves a bearer token to its still-current user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
}

// LoginRequest accepts a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	clock    clock.Clock
	log      *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, clk clock.Clock, log *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		clock:    clk,
		log:      log,
	}
}

// Login starts a new session. Earlier tokens of the same user stop working.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Login = strings.TrimSpace(req.Login)
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, storeErr(err, "User", "loading")
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("User account is inactive")
	}

	now := s.clock.Now()
	version := uuid.NewString()
	if err := s.userRepo.StartSession(ctx, user.ID, version, now); err != nil {
		return nil, storeErr(err, "User", "updating")
	}
	user.TokenVersion = version
	user.LastLoginAt = &now

	token, err := s.tokens.GenerateToken(claimsFor(user))
	if err != nil {
		return nil, apperr.Internal(err, "Failed to generate token")
	}

	s.log.Info(s.log.WithField(ctx, "username", user.Username), "user logged in")
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Logout rotates the token version so the current token is rejected.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, userID, uuid.NewString()); err != nil {
		return storeErr(err, "User", "updating")
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return nil, apperr.Unauthorized("Missing authorization token")
		}
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, storeErr(err, "User", "loading")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("User account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperr.Unauthorized(msgSessionExpired)
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// ChangePassword also ends every open session of the user.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if err := validator.Check(&req); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return storeErr(err, "User", "loading")
	}
	if !user.CheckPassword(req.OldPassword) {
		return apperr.InvalidField("old_password", "current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperr.Internal(err, "Failed to hash password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return storeErr(err, "User", "updating")
	}
	return s.Logout(ctx, user.ID)
}

func claimsFor(user *model.User) jwt.Claims {
	return jwt.Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		IsSuperuser:  user.IsSuperuser,
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: user.TokenVersion,
	}
}
