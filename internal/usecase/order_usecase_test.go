package usecase

import (
	"context"
	"errors"
	"testing"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/testutil"

	"github.com/shopspring/decimal"
)

func createOrder(t *testing.T, f *fixture, number string, supplier, buyer *entity.User, status entity.OrderStatus) *entity.Order {
	t.Helper()
	order := &entity.Order{
		OrderNumber: number,
		SupplierID:  supplier.ID,
		BuyerID:     buyer.ID,
		Status:      status,
		TotalAmount: decimal.RequireFromString("1750000"),
		Items: []entity.OrderItem{
			{ProductName: "Busur Recurve 68\"", Quantity: 1, UnitPrice: decimal.RequireFromString("1500000")},
			{ProductName: "Anak Panah Karbon", Quantity: 12, UnitPrice: decimal.RequireFromString("20833.33")},
		},
	}
	if err := f.db.Omit("Buyer").Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestUpsertCourierShipsOrder(t *testing.T) {
	f := newFixture(t)
	uc := f.orderUsecase()
	ctx := context.Background()

	supplier := testutil.CreateUser(t, f.db, entity.RoleIDSupplier, "Busur Jaya")
	buyer := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Dimas")
	order := createOrder(t, f, "ORD-1001", supplier, buyer, entity.OrderStatusPaid)

	req := &dto.UpsertCourierRequest{
		CourierName:       "JNE",
		AWBNumber:         "JNE0012345",
		TrackingURL:       "https://jne.co.id/track/JNE0012345",
		Cost:              decimal.NewFromInt(25000),
		EstimatedDelivery: "2026-10-25",
	}
	shipped, err := uc.UpsertCourier(ctx, sessionOf(supplier), order.ID, req)
	if err != nil {
		t.Fatalf("UpsertCourier() error = %v", err)
	}
	if shipped.Status != string(entity.OrderStatusShipped) {
		t.Errorf("Status = %s, want SHIPPED", shipped.Status)
	}
	if shipped.Courier == nil || shipped.Courier.AWBNumber != "JNE0012345" || shipped.Courier.EstimatedDelivery != "2026-10-25" {
		t.Errorf("unexpected courier %+v", shipped.Courier)
	}
	if len(shipped.Items) != 2 || !shipped.Items[1].Subtotal.Equal(decimal.RequireFromString("249999.96")) {
		t.Errorf("unexpected items %+v", shipped.Items)
	}

	req.AWBNumber = "JNE0099999"
	if _, err := uc.UpsertCourier(ctx, sessionOf(supplier), order.ID, req); err != nil {
		t.Fatalf("second UpsertCourier() error = %v", err)
	}
	var couriers int64
	f.db.Model(&entity.OrderCourier{}).Count(&couriers)
	if couriers != 1 {
		t.Errorf("courier rows = %d, want 1", couriers)
	}
	if f.countAudit(t, entity.AuditActionOrderShipped) != 2 {
		t.Error("expected an order.shipped entry per upsert")
	}
}

func TestUpsertCourierRejections(t *testing.T) {
	f := newFixture(t)
	uc := f.orderUsecase()
	ctx := context.Background()

	supplier := testutil.CreateUser(t, f.db, entity.RoleIDSupplier, "Busur Jaya")
	rival := testutil.CreateUser(t, f.db, entity.RoleIDSupplier, "Panah Makmur")
	buyer := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Dimas")
	order := createOrder(t, f, "ORD-2001", supplier, buyer, entity.OrderStatusPaid)
	cancelled := createOrder(t, f, "ORD-2002", supplier, buyer, entity.OrderStatusCancelled)

	valid := dto.UpsertCourierRequest{CourierName: "JNE", AWBNumber: "A1", Cost: decimal.NewFromInt(10000)}

	negative := valid
	negative.Cost = decimal.NewFromInt(-1)
	if _, err := uc.UpsertCourier(ctx, sessionOf(supplier), order.ID, &negative); !errors.Is(err, ErrInvalidCourierCost) {
		t.Errorf("negative cost error = %v, want ErrInvalidCourierCost", err)
	}
	if _, err := uc.UpsertCourier(ctx, sessionOf(rival), order.ID, &valid); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign supplier error = %v, want ErrForbidden", err)
	}
	if _, err := uc.UpsertCourier(ctx, sessionOf(supplier), cancelled.ID, &valid); !errors.Is(err, ErrOrderCancelled) {
		t.Errorf("cancelled order error = %v, want ErrOrderCancelled", err)
	}

	var stored entity.Order
	f.db.First(&stored, "id = ?", order.ID)
	if stored.Status != entity.OrderStatusPaid {
		t.Errorf("rejected upserts changed status to %s", stored.Status)
	}
}

func TestListOrdersByEffectiveSupplier(t *testing.T) {
	f := newFixture(t)
	uc := f.orderUsecase()
	ctx := context.Background()

	a := testutil.CreateUser(t, f.db, entity.RoleIDSupplier, "A")
	b := testutil.CreateUser(t, f.db, entity.RoleIDSupplier, "B")
	buyer := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Buyer")
	createOrder(t, f, "ORD-A1", a, buyer, entity.OrderStatusPaid)
	createOrder(t, f, "ORD-A2", a, buyer, entity.OrderStatusPaid)
	createOrder(t, f, "ORD-B1", b, buyer, entity.OrderStatusPaid)

	own, err := uc.ListOrders(ctx, sessionOf(a), nil, "", 1, 10)
	if err != nil || own.Total != 2 {
		t.Fatalf("supplier ListOrders() = %+v, %v", own, err)
	}
	if _, err := uc.ListOrders(ctx, sessionOf(a), &b.ID, "", 1, 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("peeking at another supplier error = %v, want ErrForbidden", err)
	}

	admin := adminSession(t, f)
	all, _ := uc.ListOrders(ctx, admin, nil, "", 1, 10)
	if all.Total != 3 {
		t.Errorf("admin total = %d, want 3", all.Total)
	}
	filtered, _ := uc.ListOrders(ctx, admin, &b.ID, "paid", 1, 10)
	if filtered.Total != 1 || filtered.Orders[0].BuyerName != "Buyer" {
		t.Errorf("admin filtered = %+v", filtered)
	}

	if _, err := uc.ListOrders(ctx, sessionOf(buyer), nil, "", 1, 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("athlete ListOrders() error = %v, want ErrForbidden", err)
	}
}
