package repositories

import "lemari/internal/models"

// PlaceOrderParams describes one order placement.
type PlaceOrderParams struct {
	UserID    string
	ProductID string
	Quantity  int
	// DecrementOnRepeat charges stock even when the user already has an
	// order for the product. The call still fails with ErrOrderExists.
	DecrementOnRepeat bool
}

// OrderRepository defines the interface for order data access. Every
// lookup is scoped to the owning user; another user's order is reported
// as ErrNotFound.
type OrderRepository interface {
	// Place checks stock, decrements it and creates the order in one
	// transaction.
	Place(params PlaceOrderParams) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	GetForUser(id, userID string) (*models.Order, error)
	// UpdateQuantity applies the quantity change to the product's stock
	// in the same transaction.
	UpdateQuantity(id, userID string, quantity int) (*models.Order, error)
	// DeleteForUser returns the ordered units to stock.
	DeleteForUser(id, userID string) error
}
