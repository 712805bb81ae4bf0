package handlers

import (
	"strings"

	"lemari/internal/middleware"
	"lemari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders. Every route needs an
// identity and only ever sees the caller's own orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.RequireIdentity())
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/:id/create-order", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id", h.HandleUpdateOrder)
	orderRoutes.Patch("/:id", h.HandleUpdateOrder)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetOrders lists the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return writeError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleCreateOrder orders the product named in the path. The quantity
// comes from a JSON body or a form field.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	quantity, err := quantityFromBody(c)
	if err != nil {
		return badBody(c, err)
	}

	order, err := h.service.PlaceOrder(middleware.CurrentUser(c), c.Params("id"), quantity)
	if err != nil {
		return writeError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order successful",
		"data":    order,
	})
}

// HandleUpdateOrder serves both PUT and PATCH. Only the quantity changes.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req services.OrderInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	partial := c.Method() == fiber.MethodPatch
	order, err := h.service.UpdateOrder(middleware.CurrentUser(c), c.Params("id"), req, partial)
	if err != nil {
		return writeError(c, err, "Could not update order")
	}

	message := "Order updated successfully!"
	if partial {
		message = "Order partially updated!"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"data":    order,
	})
}

func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(middleware.CurrentUser(c), c.Params("id")); err != nil {
		return writeError(c, err, "Could not delete order")
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully!",
	})
}

// quantityFromBody returns the raw quantity value, nil when absent.
func quantityFromBody(c *fiber.Ctx) (interface{}, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if v := c.FormValue("quantity"); v != "" {
			return v, nil
		}
		return nil, nil
	}
	if len(c.Body()) == 0 {
		return nil, nil
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return nil, err
	}
	return body["quantity"], nil
}
