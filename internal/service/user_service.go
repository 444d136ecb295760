package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	// SeedAccounts makes sure privileges, roles and the configured admin
	// superuser exist. It is safe to run on every start.
	SeedAccounts(ctx context.Context, admin config.AdminConfig) error
	CreateUser(ctx context.Context, req CreateUserRequest, actor Actor) (*model.User, error)
	ResetPassword(ctx context.Context, login, newPassword string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.UserResponse, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required"`
	RoleCode    string `json:"role_code" validate:"required,oneof=OWNER STAFF"`
	IsSuperuser bool   `json:"is_superuser"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	log           *logger.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	log *logger.Logger,
) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		log:           log,
	}
}

func (s *userService) SeedAccounts(ctx context.Context, admin config.AdminConfig) error {
	if err := s.privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := s.roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	privileges, err := s.privilegeRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}
	staff := make([]model.Privilege, 0, len(privileges))
	for _, p := range privileges {
		if model.StaffPrivilege(p.Code) {
			staff = append(staff, p)
		}
	}

	grants := map[string][]model.Privilege{model.RoleOwner: privileges, model.RoleStaff: staff}
	for code, privs := range grants {
		role, err := s.roleRepo.FindByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("load role %s: %w", code, err)
		}
		if err := s.roleRepo.GrantIfEmpty(ctx, role, privs); err != nil {
			return fmt.Errorf("grant role %s: %w", code, err)
		}
	}

	if admin.Username == "" || admin.Password == "" {
		return nil
	}
	if _, err := s.userRepo.FindByLogin(ctx, admin.Username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	_, err = s.CreateUser(ctx, CreateUserRequest{
		Username:    admin.Username,
		Email:       admin.Email,
		Password:    admin.Password,
		FullName:    "Administrator",
		RoleCode:    model.RoleOwner,
		IsSuperuser: true,
	}, SystemActor)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info(s.log.WithField(ctx, "username", admin.Username), "admin account seeded")
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest, actor Actor) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = NormalizeEmail(req.Email)
	req.RoleCode = strings.ToUpper(strings.TrimSpace(req.RoleCode))
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	for _, login := range []string{req.Username, req.Email} {
		if _, err := s.userRepo.FindByLogin(ctx, login); err == nil {
			return nil, apperr.Conflict(fmt.Sprintf("A user with username or email %s already exists", login))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr(err, "User", "loading")
		}
	}

	role, err := s.roleRepo.FindByCode(ctx, req.RoleCode)
	if err != nil {
		return nil, storeErr(err, "Role", "loading")
	}

	user := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    strings.TrimSpace(req.FullName),
		IsSuperuser: req.IsSuperuser,
		IsActive:    true,
		RoleID:      &role.ID,
		Role:        role,
		Privileges:  role.Privileges,
	}
	user.CreatedBy = actor.label()
	user.UpdatedBy = actor.label()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Internal(err, "Failed to hash password")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr(err, "User", "creating")
	}
	return user, nil
}

// ResetPassword sets a new password without knowing the old one and ends
// the user's sessions. Only the operator tool calls it.
func (s *userService) ResetPassword(ctx context.Context, login, newPassword string) (*model.User, error) {
	if len(newPassword) < 8 {
		return nil, apperr.InvalidField("password", "must be at least 8 characters")
	}
	user, err := s.userRepo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, storeErr(err, "User", "loading")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return nil, apperr.Internal(err, "Failed to hash password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return nil, storeErr(err, "User", "updating")
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return nil, storeErr(err, "User", "updating")
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err, "User", "loading")
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "Role", "loading")
	}
	return roles, nil
}
