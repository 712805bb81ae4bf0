package repositories

import (
	"lemari/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateRepository defines the interface for rating data access.
type RateRepository interface {
	// List returns all ratings, or only those of productID when non-empty.
	List(productID string) ([]models.Rate, error)
	GetByID(id string) (*models.Rate, error)
	Create(rate *models.Rate) error
	Update(rate *models.Rate) error
	Delete(id string) error
}

// GORMRateRepository is a GORM implementation of RateRepository.
type GORMRateRepository struct {
	db *gorm.DB
}

// NewGORMRateRepository creates a new instance of GORMRateRepository.
func NewGORMRateRepository(db *gorm.DB) *GORMRateRepository {
	return &GORMRateRepository{db: db}
}

func (r *GORMRateRepository) List(productID string) ([]models.Rate, error) {
	query := r.db.Order("id")
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	var rates []models.Rate
	if err := query.Find(&rates).Error; err != nil {
		return nil, wrap(err, "failed to list ratings")
	}
	return rates, nil
}

func (r *GORMRateRepository) GetByID(id string) (*models.Rate, error) {
	var rate models.Rate
	if err := r.db.Take(&rate, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "rating with ID %s", id)
	}
	return &rate, nil
}

func (r *GORMRateRepository) Create(rate *models.Rate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}
	if err := r.db.Create(rate).Error; err != nil {
		return wrap(err, "failed to create rating")
	}
	return nil
}

func (r *GORMRateRepository) Update(rate *models.Rate) error {
	res := r.db.Model(rate).Select("product_id", "rating").Updates(rate)
	if res.Error != nil {
		return wrap(res.Error, "failed to update rating %s", rate.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "rating with ID %s", rate.ID)
	}
	return nil
}

func (r *GORMRateRepository) Delete(id string) error {
	res := r.db.Delete(&models.Rate{}, "id = ?", id)
	if res.Error != nil {
		return wrap(res.Error, "failed to delete rating %s", id)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "rating with ID %s", id)
	}
	return nil
}
