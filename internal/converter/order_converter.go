package converter

import (
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/rules"

	"github.com/shopspring/decimal"
)

// OrderToResponse converts an Order entity to OrderResponse DTO
func OrderToResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}

	response := &dto.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		SupplierID:      o.SupplierID,
		BuyerID:         o.BuyerID,
		BuyerName:       o.Buyer.Name,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Items:           make([]dto.OrderItemResponse, len(o.Items)),
		Courier:         CourierToResponse(o.Courier),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	for i, item := range o.Items {
		response.Items[i] = dto.OrderItemResponse{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
	}

	return response
}

// OrdersToResponses converts a slice of Order entities
func OrdersToResponses(orders []entity.Order) []dto.OrderResponse {
	responses := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *OrderToResponse(&orders[i])
	}
	return responses
}

// CourierToResponse converts an OrderCourier entity to CourierResponse DTO
func CourierToResponse(c *entity.OrderCourier) *dto.CourierResponse {
	if c == nil {
		return nil
	}

	response := &dto.CourierResponse{
		CourierName: c.CourierName,
		AWBNumber:   c.AWBNumber,
		TrackingURL: c.TrackingURL,
		Cost:        c.Cost,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.EstimatedDelivery != nil {
		response.EstimatedDelivery = c.EstimatedDelivery.Format(rules.DateLayout)
	}
	return response
}
