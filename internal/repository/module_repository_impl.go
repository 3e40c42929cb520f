package repository

import (
	"context"
	"errors"

	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type moduleRepository struct{}

func NewModuleRepository() domainRepo.ModuleRepository {
	return &moduleRepository{}
}

func (r *moduleRepository) Create(ctx context.Context, db *gorm.DB, module *entity.Module) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(module).Error
}

func (r *moduleRepository) FindAll(ctx context.Context, db *gorm.DB, status entity.ModuleStatus) ([]entity.Module, error) {
	query := db.WithContext(ctx).Model(&entity.Module{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var modules []entity.Module
	if err := query.Order("created_at DESC").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// FindByID loads a module with its sections and fields, both ordered by position.
func (r *moduleRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Module, error) {
	var module entity.Module
	err := db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Sections.Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) Update(ctx context.Context, db *gorm.DB, module *entity.Module) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(module).Error
}

// Delete removes the module and everything hanging off it.
func (r *moduleRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	db = db.WithContext(ctx)
	if err := db.Where("module_id = ?", id).Delete(&entity.ModuleField{}).Error; err != nil {
		return err
	}
	if err := db.Where("module_id = ?", id).Delete(&entity.ModuleSection{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&entity.Module{}).Error
}

func (r *moduleRepository) FindSectionByName(ctx context.Context, db *gorm.DB, moduleID uuid.UUID, name string) (*entity.ModuleSection, error) {
	var section entity.ModuleSection
	err := db.WithContext(ctx).Where("module_id = ? AND name = ?", moduleID, name).First(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}

func (r *moduleRepository) CountSections(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.ModuleSection{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}

func (r *moduleRepository) CreateSection(ctx context.Context, db *gorm.DB, section *entity.ModuleSection) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(section).Error
}

func (r *moduleRepository) FindFieldByID(ctx context.Context, db *gorm.DB, moduleID, fieldID uuid.UUID) (*entity.ModuleField, error) {
	return r.firstField(db.WithContext(ctx).Where("module_id = ? AND id = ?", moduleID, fieldID))
}

func (r *moduleRepository) FindFieldByName(ctx context.Context, db *gorm.DB, moduleID uuid.UUID, fieldName string) (*entity.ModuleField, error) {
	return r.firstField(db.WithContext(ctx).Where("module_id = ? AND field_name = ?", moduleID, fieldName))
}

func (r *moduleRepository) CountFieldsInSection(ctx context.Context, db *gorm.DB, sectionID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.ModuleField{}).Where("section_id = ?", sectionID).Count(&count).Error
	return count, err
}

func (r *moduleRepository) CreateField(ctx context.Context, db *gorm.DB, field *entity.ModuleField) error {
	return db.WithContext(ctx).Create(field).Error
}

func (r *moduleRepository) UpdateField(ctx context.Context, db *gorm.DB, field *entity.ModuleField) error {
	return db.WithContext(ctx).Save(field).Error
}

func (r *moduleRepository) DeleteField(ctx context.Context, db *gorm.DB, fieldID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", fieldID).Delete(&entity.ModuleField{})
	return result.RowsAffected, result.Error
}

func (r *moduleRepository) firstField(query *gorm.DB) (*entity.ModuleField, error) {
	var field entity.ModuleField
	if err := query.First(&field).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}
