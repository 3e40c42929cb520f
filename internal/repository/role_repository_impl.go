package repository

import (
	"context"
	"errors"

	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"

	"gorm.io/gorm"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	return r.findOne(ctx, db, "role_name = ?", name)
}

func (r *roleRepository) FindByCode(ctx context.Context, db *gorm.DB, code string) (*entity.Role, error) {
	return r.findOne(ctx, db, "code = ?", code)
}

func (r *roleRepository) FindSelectable(ctx context.Context, db *gorm.DB) ([]entity.Role, error) {
	var roles []entity.Role
	err := db.WithContext(ctx).Where("selectable = ?", true).Order("code ASC").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg interface{}) (*entity.Role, error) {
	var role entity.Role
	err := db.WithContext(ctx).Where(query, arg).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
