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

type parentLinkRepository struct{}

func NewParentLinkRepository() domainRepo.ParentLinkRepository {
	return &parentLinkRepository{}
}

func (r *parentLinkRepository) Create(ctx context.Context, db *gorm.DB, link *entity.ParentLink) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(link).Error
}

func (r *parentLinkRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.ParentLink, error) {
	var link entity.ParentLink
	err := db.WithContext(ctx).Preload("Parent").Where("id = ?", id).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// FindOpen returns the pending or accepted link between a parent and a child.
func (r *parentLinkRepository) FindOpen(ctx context.Context, db *gorm.DB, parentID, childID uuid.UUID) (*entity.ParentLink, error) {
	var link entity.ParentLink
	err := db.WithContext(ctx).
		Where("parent_id = ? AND child_id = ? AND status IN ?", parentID, childID,
			[]entity.ParentLinkStatus{entity.ParentLinkPending, entity.ParentLinkAccepted}).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *parentLinkRepository) FindAcceptedByParent(ctx context.Context, db *gorm.DB, parentID uuid.UUID) ([]entity.ParentLink, error) {
	var links []entity.ParentLink
	err := db.WithContext(ctx).
		Preload("Child.Athlete").
		Where("parent_id = ? AND status = ?", parentID, entity.ParentLinkAccepted).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *parentLinkRepository) FindPendingByChild(ctx context.Context, db *gorm.DB, childID uuid.UUID) ([]entity.ParentLink, error) {
	var links []entity.ParentLink
	err := db.WithContext(ctx).
		Preload("Parent").
		Where("child_id = ? AND status = ?", childID, entity.ParentLinkPending).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *parentLinkRepository) Update(ctx context.Context, db *gorm.DB, link *entity.ParentLink) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(link).Error
}
