package handler

import (
	"errors"
	"net/http"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/response"
	"csystem-sip/pkg/validator"

	"github.com/google/uuid"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUsecase
	validator    *validator.CustomValidator
}

func NewOrderHandler(orderUsecase usecase.OrderUsecase, validator *validator.CustomValidator) *OrderHandler {
	return &OrderHandler{
		orderUsecase: orderUsecase,
		validator:    validator,
	}
}

// ListOrders lists supplier orders
// @Summary List orders
// @Tags Order
// @Security BearerAuth
// @Produce json
// @Param supplierId query string false "Supplier ID (admin only)"
// @Param status query string false "Order status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var supplierID *uuid.UUID
	if raw := r.URL.Query().Get("supplierId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid supplier ID", nil)
			return
		}
		supplierID = &id
	}

	page, limit := usecase.NormalizePage(pageParams(r))
	orders, err := h.orderUsecase.ListOrders(r.Context(), sess, supplierID, r.URL.Query().Get("status"), page, limit)
	if err != nil {
		writeOrderError(w, err, "Failed to get orders")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Orders retrieved successfully", orders, pageMeta(page, limit, orders.Total))
}

// UpsertCourier records the shipment of an order
// @Summary Upsert courier
// @Tags Order
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body dto.UpsertCourierRequest true "Courier"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/courier [put]
func (h *OrderHandler) UpsertCourier(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}

	var req dto.UpsertCourierRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	order, err := h.orderUsecase.UpsertCourier(r.Context(), sess, orderID, &req)
	if err != nil {
		writeOrderError(w, err, "Failed to save courier")
		return
	}

	response.Success(w, http.StatusOK, "Courier saved successfully", order)
}

func writeOrderError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You don't have access to this order")
	case errors.Is(err, usecase.ErrOrderNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrOrderCancelled):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidCourierCost), errors.Is(err, usecase.ErrInvalidDeliveryDay):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
