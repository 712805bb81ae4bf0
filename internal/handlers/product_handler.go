package handlers

import (
	"lemari/internal/middleware"
	"lemari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts lists products, optionally filtered by the search and
// price query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := services.ParseProductFilter(c.Query("search"), c.Query("price"))
	if err != nil {
		return writeError(c, err, "Could not retrieve products")
	}
	products, err := h.service.ListProducts(filter)
	if err != nil {
		return writeError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return writeError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.CreateProduct(middleware.CurrentUser(c), req)
	if err != nil {
		return writeError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product(s) uploaded successfully!",
		"data":    product,
	})
}

// HandleUpdateProduct serves both PUT and PATCH.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	partial := c.Method() == fiber.MethodPatch
	product, err := h.service.UpdateProduct(middleware.CurrentUser(c), c.Params("id"), req, partial)
	if err != nil {
		return writeError(c, err, "Could not update product")
	}

	message := "Product updated successfully!"
	if partial {
		message = "Product partially updated!"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"data":    product,
	})
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(middleware.CurrentUser(c), c.Params("id")); err != nil {
		return writeError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product(s) deleted successfully!",
	})
}
