package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParentLinkRepository interface {
	Create(ctx context.Context, db *gorm.DB, link *entity.ParentLink) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.ParentLink, error)
	FindOpen(ctx context.Context, db *gorm.DB, parentID, childID uuid.UUID) (*entity.ParentLink, error)
	FindAcceptedByParent(ctx context.Context, db *gorm.DB, parentID uuid.UUID) ([]entity.ParentLink, error)
	FindPendingByChild(ctx context.Context, db *gorm.DB, childID uuid.UUID) ([]entity.ParentLink, error)
	Update(ctx context.Context, db *gorm.DB, link *entity.ParentLink) error
}
