package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleRepository interface {
	Create(ctx context.Context, db *gorm.DB, module *entity.Module) error
	FindAll(ctx context.Context, db *gorm.DB, status entity.ModuleStatus) ([]entity.Module, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Module, error)
	Update(ctx context.Context, db *gorm.DB, module *entity.Module) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error

	FindSectionByName(ctx context.Context, db *gorm.DB, moduleID uuid.UUID, name string) (*entity.ModuleSection, error)
	CountSections(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (int64, error)
	CreateSection(ctx context.Context, db *gorm.DB, section *entity.ModuleSection) error

	FindFieldByID(ctx context.Context, db *gorm.DB, moduleID, fieldID uuid.UUID) (*entity.ModuleField, error)
	FindFieldByName(ctx context.Context, db *gorm.DB, moduleID uuid.UUID, fieldName string) (*entity.ModuleField, error)
	CountFieldsInSection(ctx context.Context, db *gorm.DB, sectionID uuid.UUID) (int64, error)
	CreateField(ctx context.Context, db *gorm.DB, field *entity.ModuleField) error
	UpdateField(ctx context.Context, db *gorm.DB, field *entity.ModuleField) error
	DeleteField(ctx context.Context, db *gorm.DB, fieldID uuid.UUID) (int64, error)
}
