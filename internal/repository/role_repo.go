package repository

import (
	"context"
	"errors"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
	// GrantIfEmpty gives a role its privileges the first time it is seeded.
	GrantIfEmpty(ctx context.Context, role *model.Role, privileges []model.Privilege) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for _, defaultRole := range model.DefaultRoles {
		var existing model.Role
		err := db.Where("code = ?", defaultRole.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role := defaultRole
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *roleRepo) GrantIfEmpty(ctx context.Context, role *model.Role, privileges []model.Privilege) error {
	if len(role.Privileges) > 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(role).Association("Privileges").Replace(privileges); err != nil {
		return err
	}
	role.Privileges = privileges
	return nil
}
