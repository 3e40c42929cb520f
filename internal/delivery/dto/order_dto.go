package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpsertCourierRequest struct {
	CourierName       string          `json:"courier_name" validate:"required,max=100"`
	AWBNumber         string          `json:"awb_number" validate:"required,max=100"`
	TrackingURL       string          `json:"tracking_url" validate:"omitempty,url"`
	Cost              decimal.Decimal `json:"cost"`
	EstimatedDelivery string          `json:"estimated_delivery" validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type OrderItemResponse struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CourierResponse struct {
	CourierName       string          `json:"courier_name"`
	AWBNumber         string          `json:"awb_number"`
	TrackingURL       string          `json:"tracking_url,omitempty"`
	Cost              decimal.Decimal `json:"cost"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	SupplierID      uuid.UUID           `json:"supplier_id"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	BuyerName       string              `json:"buyer_name,omitempty"`
	Status          string              `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	Courier         *CourierResponse    `json:"courier,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}
