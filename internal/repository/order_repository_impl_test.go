package repository

import (
	"context"
	"testing"

	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"
	"csystem-sip/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestOrderRepositoryUpsertCourier(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository()

	supplier := testutil.CreateUser(t, db, entity.RoleIDSupplier, "Busur Jaya")
	buyer := testutil.CreateUser(t, db, entity.RoleIDAthlete, "Dimas")
	order := &entity.Order{
		OrderNumber: "ORD-0001",
		SupplierID:  supplier.ID,
		BuyerID:     buyer.ID,
		Status:      entity.OrderStatusPaid,
		TotalAmount: decimal.RequireFromString("1500000"),
	}
	if err := db.Omit("Buyer").Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	courier := &entity.OrderCourier{OrderID: order.ID, CourierName: "JNE", AWBNumber: "JNE001", Cost: decimal.NewFromInt(25000), UpdatedBy: supplier.ID}
	if err := repo.UpsertCourier(ctx, db, courier); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	courier = &entity.OrderCourier{OrderID: order.ID, CourierName: "SiCepat", AWBNumber: "SC002", Cost: decimal.NewFromInt(30000), UpdatedBy: supplier.ID}
	if err := repo.UpsertCourier(ctx, db, courier); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	db.Model(&entity.OrderCourier{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single courier row, got %d", count)
	}

	got, err := repo.FindByID(ctx, db, order.ID)
	if err != nil || got == nil || got.Courier == nil {
		t.Fatalf("FindByID() = %v, %v", got, err)
	}
	if got.Courier.AWBNumber != "SC002" || !got.Courier.Cost.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("courier not overwritten: %+v", got.Courier)
	}
}

func TestOrderRepositoryFiltersBySupplier(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository()

	a := testutil.CreateUser(t, db, entity.RoleIDSupplier, "A")
	b := testutil.CreateUser(t, db, entity.RoleIDSupplier, "B")
	buyer := testutil.CreateUser(t, db, entity.RoleIDAthlete, "Buyer")
	for i, s := range []*entity.User{a, a, b} {
		o := &entity.Order{
			OrderNumber: "ORD-" + string(rune('A'+i)),
			SupplierID:  s.ID,
			BuyerID:     buyer.ID,
			Status:      entity.OrderStatusPaid,
			TotalAmount: decimal.NewFromInt(100),
		}
		if err := db.Omit("Buyer").Create(o).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	orders, total, err := repo.FindAll(ctx, db, domainRepo.OrderFilter{SupplierID: &a.ID}, 10, 0)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Errorf("got %d/%d orders, want 2", len(orders), total)
	}
	for _, o := range orders {
		if o.SupplierID != a.ID {
			t.Errorf("order of another supplier leaked: %s", o.OrderNumber)
		}
	}

	_, total, _ = repo.FindAll(ctx, db, domainRepo.OrderFilter{}, 10, 0)
	if total != 3 {
		t.Errorf("unfiltered total = %d, want 3", total)
	}
}
