package handlers

import (
	"lemari/internal/middleware"
	"lemari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RateHandler handles HTTP requests for ratings.
type RateHandler struct {
	service *services.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(service *services.RateService) *RateHandler {
	return &RateHandler{
		service: service,
	}
}

// RegisterRoutes registers the rating routes with the Fiber app.
func (h *RateHandler) RegisterRoutes(router fiber.Router) {
	rateRoutes := router.Group("/ratings")
	rateRoutes.Get("/", h.HandleListRates)
	rateRoutes.Get("/:id", h.HandleGetRate)
	rateRoutes.Post("/", h.HandleCreateRate)
	rateRoutes.Put("/:id", h.HandleUpdateRate)
	rateRoutes.Patch("/:id", h.HandleUpdateRate)
	rateRoutes.Delete("/:id", h.HandleDeleteRate)
}

// HandleListRates lists ratings, optionally those of one product.
func (h *RateHandler) HandleListRates(c *fiber.Ctx) error {
	ratings, err := h.service.ListRates(c.Query("product"))
	if err != nil {
		return writeError(c, err, "Could not retrieve ratings")
	}
	return c.JSON(ratings)
}

func (h *RateHandler) HandleGetRate(c *fiber.Ctx) error {
	rate, err := h.service.GetRate(c.Params("id"))
	if err != nil {
		return writeError(c, err, "Could not retrieve rating")
	}
	return c.JSON(rate)
}

func (h *RateHandler) HandleCreateRate(c *fiber.Ctx) error {
	var req services.RateInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	rate, err := h.service.CreateRate(middleware.CurrentUser(c), req)
	if err != nil {
		return writeError(c, err, "Could not create rating")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Rating created successfully!",
		"data":    rate,
	})
}

// HandleUpdateRate serves both PUT and PATCH.
func (h *RateHandler) HandleUpdateRate(c *fiber.Ctx) error {
	var req services.RateInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	partial := c.Method() == fiber.MethodPatch
	rate, err := h.service.UpdateRate(middleware.CurrentUser(c), c.Params("id"), req, partial)
	if err != nil {
		return writeError(c, err, "Could not update rating")
	}

	message := "Rating updated successfully!"
	if partial {
		message = "Rating partially updated!"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"data":    rate,
	})
}

func (h *RateHandler) HandleDeleteRate(c *fiber.Ctx) error {
	if err := h.service.DeleteRate(middleware.CurrentUser(c), c.Params("id")); err != nil {
		return writeError(c, err, "Could not delete rating")
	}
	return c.JSON(fiber.Map{
		"message": "Rating deleted successfully!",
	})
}
