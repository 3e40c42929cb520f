package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*entity.Role, error)
	FindSelectable(ctx context.Context, db *gorm.DB) ([]entity.Role, error)
}
