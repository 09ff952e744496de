package handler

import (
	"errors"
	"net/http"

	"partsflow/internal/core/logger"
	"partsflow/internal/features/lockers/domain"
	"partsflow/internal/features/lockers/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LockerHandler handles HTTP requests for the locker directory.
type LockerHandler struct {
	service *service.LockerService
}

// NewLockerHandler creates a new LockerHandler.
func NewLockerHandler(s *service.LockerService) *LockerHandler {
	return &LockerHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// Search handles GET /lockers.
// @Summary Search parcel lockers
// @Description Returns drop-off points matching a free-text query and optional carrier filter.
// @Tags lockers
// @Produce json
// @Param q query string false "Free-text query (name, address or city)"
// @Param carrier query string false "Carrier filter (Omniva, DPD, LP Express)"
// @Success 200 {array} domain.Locker
// @Failure 400 {object} ErrorResponse
// @Router /lockers [get]
func (h *LockerHandler) Search(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	query := c.Query("q")
	carrier := domain.Carrier(c.Query("carrier"))

	lockers, err := h.service.Search(c.Context(), query, carrier)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCarrier) {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: "Unknown carrier",
				RayID:   rayID,
			})
		}

		logger.Get().Error("Failed to search lockers",
			zap.String("query", query),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(lockers)
}
