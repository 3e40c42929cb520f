package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByCoreID(ctx context.Context, db *gorm.DB, coreID string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error)
	ExistsByCoreID(ctx context.Context, db *gorm.DB, coreID string) (bool, error)
	Update(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindActiveClubs(ctx context.Context, db *gorm.DB) ([]entity.User, error)
}
