package usecase

import (
	"context"
	"errors"
	"strings"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrInvalidCourierCost = errors.New("courier cost cannot be negative")
	ErrInvalidDeliveryDay = errors.New("estimated delivery must use the YYYY-MM-DD format")
)

type OrderUsecase interface {
	ListOrders(ctx context.Context, sess session.Session, supplierID *uuid.UUID, status string, page, limit int) (*dto.OrderListResponse, error)
	UpsertCourier(ctx context.Context, sess session.Session, orderID uuid.UUID, req *dto.UpsertCourierRequest) (*dto.OrderResponse, error)
}

type orderUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	orderRepo    repository.OrderRepository
	auditService service.AuditService
}

func NewOrderUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	orderRepo repository.OrderRepository,
	auditService service.AuditService,
) OrderUsecase {
	return &orderUsecase{
		db:           db,
		log:          log,
		orderRepo:    orderRepo,
		auditService: auditService,
	}
}

// ListOrders lists orders of the effective supplier: a supplier always sees its
// own orders, an admin may pick any supplier or see all of them.
func (u *orderUsecase) ListOrders(ctx context.Context, sess session.Session, supplierID *uuid.UUID, status string, page, limit int) (*dto.OrderListResponse, error) {
	filter := repository.OrderFilter{Status: entity.OrderStatus(strings.ToUpper(status))}

	switch {
	case sess.IsAdmin():
		filter.SupplierID = supplierID
	case sess.RoleID == entity.RoleIDSupplier:
		if supplierID != nil && *supplierID != sess.UserID {
			return nil, ErrForbidden
		}
		filter.SupplierID = &sess.UserID
	default:
		return nil, ErrForbidden
	}

	page, limit = NormalizePage(page, limit)
	orders, total, err := u.orderRepo.FindAll(ctx, u.db, filter, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find orders: %+v", err)
		return nil, err
	}

	return &dto.OrderListResponse{
		Orders: converter.OrdersToResponses(orders),
		Total:  total,
	}, nil
}

// UpsertCourier records the shipping details of an order and marks it SHIPPED
func (u *orderUsecase) UpsertCourier(ctx context.Context, sess session.Session, orderID uuid.UUID, req *dto.UpsertCourierRequest) (*dto.OrderResponse, error) {
	if req.Cost.IsNegative() {
		return nil, ErrInvalidCourierCost
	}

	courier := &entity.OrderCourier{
		OrderID:     orderID,
		CourierName: strings.TrimSpace(req.CourierName),
		AWBNumber:   strings.TrimSpace(req.AWBNumber),
		TrackingURL: strings.TrimSpace(req.TrackingURL),
		Cost:        req.Cost,
		UpdatedBy:   sess.UserID,
	}
	if req.EstimatedDelivery != "" {
		day, ok := rules.ParseDate(req.EstimatedDelivery)
		if !ok {
			return nil, ErrInvalidDeliveryDay
		}
		courier.EstimatedDelivery = &day
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	order, err := u.orderRepo.FindByID(ctx, tx, orderID)
	if err != nil {
		u.log.Warnf("Failed to find order: %+v", err)
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.SupplierID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if order.IsCancelled() {
		return nil, ErrOrderCancelled
	}

	if err := u.orderRepo.UpsertCourier(ctx, tx, courier); err != nil {
		u.log.Warnf("Failed to upsert courier: %+v", err)
		return nil, err
	}

	previous := order.Status
	order.Ship()
	if err := u.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status); err != nil {
		u.log.Warnf("Failed to update order status: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, tx, &sess.UserID, entity.AuditActionOrderShipped, entity.JSON{
		"order_id":        order.ID.String(),
		"order_number":    order.OrderNumber,
		"previous_status": string(previous),
		"courier_name":    courier.CourierName,
		"awb_number":      courier.AWBNumber,
		"cost":            courier.Cost.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"awb":      courier.AWBNumber,
	}).Info("Order shipped")

	shipped, err := u.orderRepo.FindByID(ctx, u.db, order.ID)
	if err != nil {
		u.log.Warnf("Failed to reload order: %+v", err)
		return nil, err
	}
	return converter.OrderToResponse(shipped), nil
}
