package handlers

import (
	"lemari/internal/middleware"
	"lemari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/", h.HandleListReviews)
	reviewRoutes.Get("/:id", h.HandleGetReview)
	reviewRoutes.Post("/", h.HandleCreateReview)
	reviewRoutes.Put("/:id", h.HandleUpdateReview)
	reviewRoutes.Patch("/:id", h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", h.HandleDeleteReview)
}

// HandleListReviews lists reviews, optionally those of one product.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.Query("product"))
	if err != nil {
		return writeError(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.service.GetReview(c.Params("id"))
	if err != nil {
		return writeError(c, err, "Could not retrieve review")
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	review, err := h.service.CreateReview(middleware.CurrentUser(c), req)
	if err != nil {
		return writeError(c, err, "Could not create review")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review created successfully!",
		"data":    review,
	})
}

// HandleUpdateReview serves both PUT and PATCH.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	partial := c.Method() == fiber.MethodPatch
	review, err := h.service.UpdateReview(middleware.CurrentUser(c), c.Params("id"), req, partial)
	if err != nil {
		return writeError(c, err, "Could not update review")
	}

	message := "Review updated successfully!"
	if partial {
		message = "Review partially updated!"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"data":    review,
	})
}

func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(middleware.CurrentUser(c), c.Params("id")); err != nil {
		return writeError(c, err, "Could not delete review")
	}
	return c.JSON(fiber.Map{
		"message": "Review deleted successfully!",
	})
}
