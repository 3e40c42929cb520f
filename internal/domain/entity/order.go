package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Order is a supplier order placed through the marketplace
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Status          OrderStatus     `gorm:"type:varchar(12);not null;default:'PENDING';index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Items   []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Courier *OrderCourier `gorm:"foreignKey:OrderID" json:"courier,omitempty"`
	Buyer   User          `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsCancelled checks if order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// Ship changes order status to shipped
func (o *Order) Ship() {
	o.Status = OrderStatusShipped
}

// OrderItem is a line of an order
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderCourier is the shipping record of an order, one per order
type OrderCourier struct {
	OrderID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"order_id"`
	CourierName       string          `gorm:"type:varchar(100);not null" json:"courier_name"`
	AWBNumber         string          `gorm:"column:awb_number;type:varchar(100);not null" json:"awb_number"`
	TrackingURL       string          `gorm:"type:text" json:"tracking_url"`
	Cost              decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost"`
	EstimatedDelivery *time.Time      `gorm:"type:date" json:"estimated_delivery,omitempty"`
	UpdatedBy         uuid.UUID       `gorm:"type:uuid;not null" json:"updated_by"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OrderCourier) TableName() string {
	return "order_couriers"
}
