package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/api/response"
	"github.com/prodtrack/prodtrack/internal/order"
)

// OrderHandler handles production order endpoints.
type OrderHandler struct {
	orders *order.Service
	logger zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *order.Service, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// ListOrders handles GET /api/orders?status= - orders newest-first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != order.StatusPending && status != order.StatusCompleted {
		response.BadRequest(w, r, "unknown order status", []models.FieldError{
			{Field: "status", Message: "must be one of: pending, completed", Code: "oneof"},
		})
		return
	}

	orders, err := h.orders.List(r.Context(), status)
	if err != nil {
		h.writeServiceError(w, r, err, "list orders")
		return
	}

	out := make([]*models.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, models.NewOrder(o))
	}
	response.JSON(w, r, http.StatusOK, models.OrderListResponse{
		Success: true,
		Orders:  out,
		Count:   len(out),
	})
}

// GetOrder handles GET /api/orders/{orderCode}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderCode := chi.URLParam(r, "orderCode")

	o, err := h.orders.Get(r.Context(), orderCode)
	if err != nil {
		h.writeServiceError(w, r, err, "get order")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewOrder(o))
}

// StartOrder handles POST /api/orders - start a production order. The
// classified device and its operator are recorded on the row.
func (h *OrderHandler) StartOrder(w http.ResponseWriter, r *http.Request) {
	var input models.StartOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.OrderCode == "" {
		// Also mounted as POST /api/orders/{orderCode}.
		input.OrderCode = chi.URLParam(r, "orderCode")
	}

	deviceID := ""
	operator := input.Operator
	if auth, ok := middleware.GetDeviceAuth(r.Context()); ok {
		deviceID = auth.DeviceID
		if operator == "" && auth.Device != nil {
			operator = auth.Device.Name
		}
	}

	items := make([]order.Item, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, order.Item(it))
	}

	o, err := h.orders.Start(r.Context(), input.OrderCode, deviceID, operator, input.Notes, items)
	if err != nil {
		h.writeServiceError(w, r, err, "start order")
		return
	}

	location := fmt.Sprintf("/api/orders/%s", o.OrderCode)
	response.Created(w, r, location, models.NewOrder(o))
}

// CompleteOrder handles POST /api/orders/{orderCode}/complete.
func (h *OrderHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	orderCode := chi.URLParam(r, "orderCode")

	deviceID := ""
	if auth, ok := middleware.GetDeviceAuth(r.Context()); ok {
		deviceID = auth.DeviceID
	}

	o, err := h.orders.Complete(r.Context(), orderCode, deviceID)
	if err != nil {
		h.writeServiceError(w, r, err, "complete order")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewOrder(o))
}

// RemoveOrder handles DELETE /api/orders/{orderCode}.
func (h *OrderHandler) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	orderCode := chi.URLParam(r, "orderCode")

	if err := h.orders.Remove(r.Context(), orderCode); err != nil {
		h.writeServiceError(w, r, err, "remove order")
		return
	}
	response.NoContent(w, r)
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		response.NotFound(w, r, "order not found")
	case errors.Is(err, order.ErrOrderExists):
		response.Conflict(w, r, "order already exists")
	case errors.Is(err, order.ErrStoreUnavailable):
		response.ServiceUnavailable(w, r, "order store unavailable")
	default:
		h.logger.Error().Err(err).Str("op", op).Msg("order operation failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
