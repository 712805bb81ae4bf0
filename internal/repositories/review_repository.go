package repositories

import (
	"lemari/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	// List returns all reviews, or only those of productID when non-empty.
	List(productID string) ([]models.Review, error)
	GetByID(id string) (*models.Review, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id string) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) List(productID string) ([]models.Review, error) {
	query := r.db.Order("review_date, id")
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, wrap(err, "failed to list reviews")
	}
	return reviews, nil
}

func (r *GORMReviewRepository) GetByID(id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.Take(&review, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "review with ID %s", id)
	}
	return &review, nil
}

func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		return wrap(err, "failed to create review")
	}
	return nil
}

// Update writes the product and text of a review; author and date are fixed.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Model(review).Select("product_id", "review").Updates(review)
	if res.Error != nil {
		return wrap(res.Error, "failed to update review %s", review.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "review with ID %s", review.ID)
	}
	return nil
}

func (r *GORMReviewRepository) Delete(id string) error {
	res := r.db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return wrap(res.Error, "failed to delete review %s", id)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "review with ID %s", id)
	}
	return nil
}
