package services

import (
	"fmt"
	"log"
	"strings"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductInput carries the writable fields of a product. Nil fields are
// absent from the request.
type ProductInput struct {
	Name          *string          `json:"name" validate:"required,notblank,max=100"`
	Price         *decimal.Decimal `json:"price" validate:"required,gte=0,lte=1000"`
	Description   *string          `json:"description" validate:"required,notblank,max=500"`
	Image         *string          `json:"image" validate:"omitempty,max=255"`
	StockQuantity *int             `json:"stock_quantity" validate:"required,gte=0,lte=100"`
	Category      *string          `json:"category" validate:"required,notblank,oneof=pants t-shirts shoes jerseys dresses socks shorts"`
}

// ProductFilter narrows a product listing.
type ProductFilter = repositories.ProductFilter

// ParseProductFilter builds a filter from the raw search and price query
// parameters.
func ParseProductFilter(search, price string) (ProductFilter, error) {
	filter := ProductFilter{Search: strings.TrimSpace(search)}
	if price = strings.TrimSpace(price); price != "" {
		max, err := decimal.NewFromString(price)
		if err != nil {
			return filter, newValidationError("price", "A valid number is required.")
		}
		filter.PriceMax = &max
	}
	return filter, nil
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts retrieves the products matching filter with their average
// ratings.
func (s *ProductService) ListProducts(filter ProductFilter) ([]models.Product, error) {
	products, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	averages, err := s.repo.AverageRatings(ids...)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].AverageRating = averages[products[i].ID]
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.AverageRating, err = s.AverageRating(id); err != nil {
		return nil, err
	}
	return product, nil
}

// AverageRating is the mean rating of a product, 0 when it has none.
func (s *ProductService) AverageRating(id string) (float64, error) {
	averages, err := s.repo.AverageRatings(id)
	if err != nil {
		return 0, err
	}
	return averages[id], nil
}

// CreateProduct validates in and stores a product owned by actor.
func (s *ProductService) CreateProduct(actor *models.User, in ProductInput) (*models.Product, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product := &models.Product{UserID: actor.ID}
	applyProductInput(product, in)
	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct changes a product the actor owns. A full update needs every
// required field; a partial one validates only what it changes.
func (s *ProductService) UpdateProduct(actor *models.User, id string, in ProductInput, partial bool) (*models.Product, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(actor, action, nil); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, product); err != nil {
		log.Printf("User %s denied %s on product %s", actor.ID, action, id)
		return nil, err
	}

	target := in
	if partial {
		target = productInputFrom(product)
		overlayProductInput(&target, in)
	}
	if err := validateProduct(target); err != nil {
		return nil, err
	}

	applyProductInput(product, in)
	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if product.AverageRating, err = s.AverageRating(id); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product the actor owns with everything that
// references it.
func (s *ProductService) DeleteProduct(actor *models.User, id string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, nil); err != nil {
		return err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, product); err != nil {
		log.Printf("User %s denied delete on product %s", actor.ID, id)
		return err
	}
	return s.repo.Delete(id)
}

func validateProduct(in ProductInput) error {
	verr, err := check(in)
	if err != nil {
		return err
	}
	if in.Price != nil && !in.Price.Equal(in.Price.Round(2)) {
		verr.add("price", "Ensure that there are no more than 2 decimal places.")
	}
	return verr.orNil()
}

func productInputFrom(p *models.Product) ProductInput {
	price := p.Price
	return ProductInput{
		Name:          &p.Name,
		Price:         &price,
		Description:   &p.Description,
		Image:         p.Image,
		StockQuantity: &p.StockQuantity,
		Category:      &p.Category,
	}
}

func overlayProductInput(dst *ProductInput, src ProductInput) {
	if src.Name != nil {
		dst.Name = src.Name
	}
	if src.Price != nil {
		dst.Price = src.Price
	}
	if src.Description != nil {
		dst.Description = src.Description
	}
	if src.Image != nil {
		dst.Image = src.Image
	}
	if src.StockQuantity != nil {
		dst.StockQuantity = src.StockQuantity
	}
	if src.Category != nil {
		dst.Category = src.Category
	}
}

// applyProductInput copies the supplied fields of in onto p.
func applyProductInput(p *models.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil {
		p.Image = in.Image
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
}
