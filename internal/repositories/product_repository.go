package repositories

import (
	"lemari/internal/models"

	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product listing. Zero values do not filter.
type ProductFilter struct {
	// Search matches name, category or stock quantity, case-insensitively.
	Search string
	// PriceMax keeps products priced at or below it.
	PriceMax *decimal.Decimal
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// Delete removes the product with its orders, reviews and ratings.
	Delete(id string) error
	// AverageRatings maps product ID to the mean rating. Products with no
	// ratings are absent from the map.
	AverageRatings(ids ...string) (map[string]float64, error)
}
