package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. A nil SupplierID lists every supplier.
type OrderFilter struct {
	SupplierID *uuid.UUID
	Status     entity.OrderStatus
}

type OrderRepository interface {
	FindAll(ctx context.Context, db *gorm.DB, filter OrderFilter, limit, offset int) ([]entity.Order, int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.OrderStatus) error
	UpsertCourier(ctx context.Context, db *gorm.DB, courier *entity.OrderCourier) error
}
