package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/morphcute/kim-dispo-vape-shop/internal/payments"
	"github.com/morphcute/kim-dispo-vape-shop/internal/service"
	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// OrderHandler serves checkout and order management endpoints.
type OrderHandler struct {
	orderService service.OrderServiceInterface
	payments     payments.ServiceInterface
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderServiceInterface, paymentService payments.ServiceInterface, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		payments:     paymentService,
		logger:       log.WithComponent("order_handler"),
	}
}

// paymentDirective tells the storefront what to do after checkout.
type paymentDirective struct {
	Type        string `json:"type"` // confirmed, redirect, unavailable
	CheckoutURL string `json:"checkout_url,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type checkoutResponse struct {
	Order   *models.Order     `json:"order"`
	Payment *paymentDirective `json:"payment"`
}

// Checkout handles POST /api/orders
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for checkout", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.Checkout(req)
	if err != nil {
		h.logger.Warn("Checkout rejected", "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Order placed", "order_id", order.ID, "total", order.Total.StringFixed(2))

	writeJSONResponse(h.logger, w, http.StatusCreated, checkoutResponse{
		Order:   order,
		Payment: h.initiatePayment(order),
	})
}

// initiatePayment runs the payment flow for a freshly placed order. The
// order stands even when the provider is down; fulfillment collects by
// other means, so failures degrade to an "unavailable" directive.
func (h *OrderHandler) initiatePayment(order *models.Order) *paymentDirective {
	flow, err := h.payments.Initiate(order.PaymentMethod, order.Total, fmt.Sprintf("Order #%d", order.ID))
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			h.logger.Warn("Payment provider not configured", "order_id", order.ID, "method", order.PaymentMethod)
		} else {
			h.logger.Error("Payment initiation failed", "order_id", order.ID, "error", err)
		}
		return &paymentDirective{Type: "unavailable", Message: "Online payment is currently unavailable"}
	}

	switch f := flow.(type) {
	case payments.ImmediateConfirmation:
		return &paymentDirective{Type: "confirmed"}
	case payments.ProviderRedirect:
		return &paymentDirective{Type: "redirect", CheckoutURL: f.CheckoutURL, SourceID: f.SourceID}
	default:
		h.logger.Error("Unknown payment flow", "order_id", order.ID)
		return &paymentDirective{Type: "unavailable", Message: "Online payment is currently unavailable"}
	}
}

// GetAllOrders handles GET /api/orders
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		h.logger.Error("Failed to get all orders", "error", err)
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, orders)
}

// GetOrderByID handles GET /api/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		h.logger.Warn("Failed to get order", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for status update", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orderService.UpdateStatus(id, status); err != nil {
		h.logger.Warn("Failed to update order status", "id", id, "status", status, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Order status updated", "order_id", id, "status", status)
	writeJSONResponse(h.logger, w, http.StatusOK, map[string]interface{}{"order_id": id, "status": status})
}

// DeleteOrder handles DELETE /api/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := h.orderService.DeleteOrder(id); err != nil {
		h.logger.Warn("Failed to delete order", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Order deleted, stock restored", "order_id", id)
	w.WriteHeader(http.StatusNoContent)
}
