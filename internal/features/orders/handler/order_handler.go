package handler

import (
	"errors"
	"net/http"

	"partsflow/internal/core/logger"
	"partsflow/internal/features/orders/domain"
	"partsflow/internal/features/orders/ports"
	"partsflow/internal/features/orders/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for order fulfillment.
type OrderHandler struct {
	service  *service.ShipmentService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(s *service.ShipmentService) *OrderHandler {
	return &OrderHandler{
		service:  s,
		validate: validator.New(),
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RegisterShipmentRequest is the body of POST /orders/{id}/register.
type RegisterShipmentRequest struct {
	// ParcelSize is one of S, M, L, XL.
	ParcelSize string `json:"parcel_size" validate:"required,oneof=S M L XL"`
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// GetOrder handles GET /orders/{id}.
// @Summary Get Order by ID
// @Description Fetch the current state of an order.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Order ID is required",
			RayID:   rayID(c),
		})
	}

	order, err := h.service.GetOrder(c.Context(), orderID)
	if err != nil {
		return h.errorResponse(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// ListOrders handles GET /orders.
// @Summary List orders for a party
// @Description Returns every order the party transacts in, as buyer or seller.
// @Tags orders
// @Produce json
// @Param party query string false "Party ID (buyer or seller)"
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.Context(), c.Query("party"))
	if err != nil {
		return h.errorResponse(c, "", err)
	}

	return c.Status(http.StatusOK).JSON(orders)
}

// GetTrackingHistory handles GET /orders/{id}/tracking.
// @Summary Get tracking history for an order
// @Description Returns the append-only tracking event log, oldest first.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {array} domain.TrackingEvent
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/tracking [get]
func (h *OrderHandler) GetTrackingHistory(c *fiber.Ctx) error {
	orderID := c.Params("id")

	history, err := h.service.GetTrackingHistory(c.Context(), orderID)
	if err != nil {
		return h.errorResponse(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(history)
}

// RegisterShipment handles POST /orders/{id}/register.
// @Summary Register the shipment and generate a label
// @Description Seller action: picks a parcel size, calls the label generator and moves the order to LabelReady.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body RegisterShipmentRequest true "Parcel size"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/{id}/register [post]
func (h *OrderHandler) RegisterShipment(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req RegisterShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "parcel_size must be one of S, M, L, XL",
			RayID:   rayID(c),
		})
	}

	order, err := h.service.RegisterShipment(c.Context(), orderID, domain.ParcelSize(req.ParcelSize))
	if err != nil {
		return h.errorResponse(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// MarkShipped handles POST /orders/{id}/ship.
// @Summary Mark the order as dropped off
// @Description Seller action: confirms the parcel was placed in the locker. LabelReady -> InTransit.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/ship [post]
func (h *OrderHandler) MarkShipped(c *fiber.Ctx) error {
	order, err := h.service.MarkShipped(c.Context(), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, c.Params("id"), err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// MarkReadyForPickup handles POST /orders/{id}/pickup-ready.
// @Summary Mark the order as ready for pickup
// @Description Carrier/admin signal: the parcel arrived at the destination locker. InTransit -> ReadyForPickup.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/pickup-ready [post]
func (h *OrderHandler) MarkReadyForPickup(c *fiber.Ctx) error {
	order, err := h.service.MarkReadyForPickup(c.Context(), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, c.Params("id"), err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// MarkDelivered handles POST /orders/{id}/delivered.
// @Summary Mark the order as delivered
// @Description Buyer/carrier confirmation: the parcel was collected. ReadyForPickup -> Delivered.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/delivered [post]
func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	order, err := h.service.MarkDelivered(c.Context(), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, c.Params("id"), err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// errorResponse maps service errors to HTTP statuses.
func (h *OrderHandler) errorResponse(c *fiber.Ctx, orderID string, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	switch {
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
		msg = "Order not found"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		status = http.StatusConflict
		msg = "Shipment already registered"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
		msg = "Transition not allowed from the current status"
	case errors.Is(err, domain.ErrInvalidParcelSize):
		status = http.StatusBadRequest
		msg = "Invalid parcel size"
	case errors.Is(err, service.ErrGeneratorFailure):
		status = http.StatusBadGateway
		msg = "Label generation failed, please retry"
	}

	if status == http.StatusInternalServerError {
		logger.Get().Error("Order operation failed",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}
