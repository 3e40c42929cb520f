package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, db *gorm.DB, document *entity.Document) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Document, error)
	FindByCoreID(ctx context.Context, db *gorm.DB, coreID string) ([]entity.Document, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
}
