package handler

import (
	"errors"
	"net/http"

	"partsflow/internal/core/logger"
	"partsflow/internal/features/checkout/service"
	lockers "partsflow/internal/features/lockers/domain"
	orderdomain "partsflow/internal/features/orders/domain"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler handles HTTP requests for checkout completion.
type CheckoutHandler struct {
	service  *service.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(s *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
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

// LockerRequest is the destination locker chosen at checkout.
type LockerRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city" validate:"required"`
	Carrier string `json:"carrier" validate:"required"`
}

// CheckoutRequest is the body of POST /checkout.
type CheckoutRequest struct {
	ListingID     string        `json:"listing_id" validate:"required"`
	Title         string        `json:"title" validate:"required"`
	Price         float64       `json:"price" validate:"required,gt=0"`
	ImageURL      string        `json:"image_url"`
	SellerID      string        `json:"seller_id" validate:"required"`
	SellerName    string        `json:"seller_name"`
	BuyerID       string        `json:"buyer_id" validate:"required"`
	PaymentMethod string        `json:"payment_method" validate:"required"`
	Locker        LockerRequest `json:"locker" validate:"required"`
}

// CompleteCheckout handles POST /checkout.
// @Summary Complete a checkout
// @Description Charges the buyer and creates a new order awaiting shipment registration.
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Checkout details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) CompleteCheckout(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Missing or invalid checkout fields",
			RayID:   rayID,
		})
	}

	input := service.CheckoutInput{
		Listing: orderdomain.ListingSnapshot{
			ListingID:  req.ListingID,
			Title:      req.Title,
			Price:      req.Price,
			ImageURL:   req.ImageURL,
			SellerID:   req.SellerID,
			SellerName: req.SellerName,
		},
		BuyerID: req.BuyerID,
		Destination: orderdomain.Destination{
			LockerID: req.Locker.ID,
			Name:     req.Locker.Name,
			Address:  req.Locker.Address,
			City:     req.Locker.City,
			Carrier:  lockers.Carrier(req.Locker.Carrier),
		},
		Amount:        req.Price,
		PaymentMethod: req.PaymentMethod,
	}

	order, err := h.service.CompleteCheckout(c.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Internal Server Error"

		switch {
		case errors.Is(err, service.ErrPaymentNotConfirmed):
			status = http.StatusPaymentRequired
			msg = "Payment was not confirmed"
		case errors.Is(err, orderdomain.ErrInvalidDestination), errors.Is(err, orderdomain.ErrInvalidListing):
			status = http.StatusBadRequest
			msg = "Invalid checkout details"
		default:
			logger.Get().Error("Checkout failed",
				zap.String("listing_id", req.ListingID),
				zap.String("ray_id", rayID),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(ErrorResponse{
			Message: msg,
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusCreated).JSON(order)
}
