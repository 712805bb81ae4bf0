package repositories

import (
	"errors"

	"lemari/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// forUpdate adds a row lock to reads on postgres. SQLite has no row locks;
// its single connection serializes transactions.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockProduct reads a product inside tx, holding a row lock on postgres.
func lockProduct(tx *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := forUpdate(tx).Take(&product, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "product with ID %s", id)
	}
	return &product, nil
}

// takeStock removes quantity units from a product. The guard in the WHERE
// clause keeps stock from going negative even without a row lock.
func takeStock(tx *gorm.DB, productID string, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return wrap(res.Error, "failed to decrement stock of product %s", productID)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func returnStock(tx *gorm.DB, productID string, quantity int) error {
	err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
	if err != nil {
		return wrap(err, "failed to restock product %s", productID)
	}
	return nil
}

func (r *GORMOrderRepository) Place(p PlaceOrderParams) (*models.Order, error) {
	var order *models.Order
	repeated := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, p.ProductID)
		if err != nil {
			return err
		}
		if product.StockQuantity < p.Quantity {
			return ErrInsufficientStock
		}

		var existing models.Order
		err = tx.Take(&existing, "user_id = ? AND product_id = ?", p.UserID, p.ProductID).Error
		switch {
		case err == nil:
			if !p.DecrementOnRepeat {
				return ErrOrderExists
			}
			repeated = true
			return takeStock(tx, p.ProductID, p.Quantity)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return wrap(err, "failed to look up order")
		}

		if err := takeStock(tx, p.ProductID, p.Quantity); err != nil {
			return err
		}
		order = &models.Order{
			ID:        uuid.New().String(),
			UserID:    p.UserID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		}
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderExists
			}
			return wrap(err, "failed to create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if repeated {
		return nil, ErrOrderExists
	}
	return order, nil
}

func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at, id").Find(&orders).Error; err != nil {
		return nil, wrap(err, "failed to list orders of user %s", userID)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetForUser(id, userID string) (*models.Order, error) {
	return getOrder(r.db, id, userID)
}

func getOrder(db *gorm.DB, id, userID string) (*models.Order, error) {
	var order models.Order
	if err := db.Take(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, wrap(err, "order with ID %s", id)
	}
	return &order, nil
}

func (r *GORMOrderRepository) UpdateQuantity(id, userID string, quantity int) (*models.Order, error) {
	var order *models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = getOrder(forUpdate(tx), id, userID); err != nil {
			return err
		}
		if _, err := lockProduct(tx, order.ProductID); err != nil {
			return err
		}

		switch delta := quantity - order.Quantity; {
		case delta > 0:
			err = takeStock(tx, order.ProductID, delta)
		case delta < 0:
			err = returnStock(tx, order.ProductID, -delta)
		}
		if err != nil {
			return err
		}

		res := tx.Model(order).Where("quantity = ?", order.Quantity).Update("quantity", quantity)
		if res.Error != nil {
			return wrap(res.Error, "failed to update order %s", id)
		}
		if res.RowsAffected == 0 && quantity != order.Quantity {
			return wrap(gorm.ErrRecordNotFound, "order with ID %s", id)
		}
		order.Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GORMOrderRepository) DeleteForUser(id, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		order, err := getOrder(forUpdate(tx), id, userID)
		if err != nil {
			return err
		}
		res := tx.Delete(order)
		if res.Error != nil {
			return wrap(res.Error, "failed to delete order %s", id)
		}
		if res.RowsAffected == 0 {
			return wrap(gorm.ErrRecordNotFound, "order with ID %s", id)
		}
		return returnStock(tx, order.ProductID, order.Quantity)
	})
}
