package repositories

import (
	"strings"

	"lemari/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List retrieves the products matching filter, oldest first.
func (r *GORMProductRepository) List(filter ProductFilter) ([]models.Product, error) {
	query := r.db.Model(&models.Product{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR CAST(stock_quantity AS TEXT) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	var products []models.Product
	if err := query.Order("created_date, id").Find(&products).Error; err != nil {
		return nil, wrap(err, "failed to list products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Take(&product, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "product with ID %s", id)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return wrap(err, "failed to create product")
	}
	return nil
}

// Update writes the editable columns of product. Owner and creation date
// never change.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(product).
		Select("name", "price", "description", "image", "stock_quantity", "category").
		Updates(product)
	if res.Error != nil {
		return wrap(res.Error, "failed to update product %s", product.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "product with ID %s", product.ID)
	}
	return nil
}

// Delete deletes a product and its dependent rows.
func (r *GORMProductRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Rate{}, &models.Review{}, &models.Order{}} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return wrap(err, "failed to delete rows of product %s", id)
			}
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return wrap(res.Error, "failed to delete product %s", id)
		}
		if res.RowsAffected == 0 {
			return wrap(gorm.ErrRecordNotFound, "product with ID %s", id)
		}
		return nil
	})
}

func (r *GORMProductRepository) AverageRatings(ids ...string) (map[string]float64, error) {
	averages := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return averages, nil
	}

	var rows []struct {
		ProductID string
		Average   float64
	}
	err := r.db.Model(&models.Rate{}).
		Select("product_id, AVG(rating) AS average").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "failed to average ratings")
	}

	for _, row := range rows {
		averages[row.ProductID] = row.Average
	}
	return averages, nil
}
