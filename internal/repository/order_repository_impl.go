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

type orderRepository struct{}

func NewOrderRepository() domainRepo.OrderRepository {
	return &orderRepository{}
}

func (r *orderRepository) FindAll(ctx context.Context, db *gorm.DB, filter domainRepo.OrderFilter, limit, offset int) ([]entity.Order, int64, error) {
	query := db.WithContext(ctx).Model(&entity.Order{})
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []entity.Order
	err := query.
		Preload("Items").
		Preload("Courier").
		Preload("Buyer").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Courier").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.OrderStatus) error {
	return db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Update("status", status).Error
}

// UpsertCourier keeps one shipping record per order, overwriting on resubmit.
func (r *orderRepository) UpsertCourier(ctx context.Context, db *gorm.DB, courier *entity.OrderCourier) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"courier_name", "awb_number", "tracking_url", "cost", "estimated_delivery", "updated_by", "updated_at",
		}),
	}).Create(courier).Error
}
