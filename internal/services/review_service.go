package services

import (
	"errors"
	"fmt"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"
)

// ReviewInput is the body of a review write.
type ReviewInput struct {
	Product *string `json:"product" validate:"required,uuid"`
	Review  *string `json:"review" validate:"omitempty,max=100"`
}

// ReviewService handles business logic related to reviews.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
	}
}

// ListReviews returns all reviews, or those of productID when non-empty.
func (s *ReviewService) ListReviews(productID string) ([]models.Review, error) {
	return s.reviews.List(productID)
}

func (s *ReviewService) GetReview(id string) (*models.Review, error) {
	return s.reviews.GetByID(id)
}

// CreateReview stores a review authored by actor.
func (s *ReviewService) CreateReview(actor *models.User, in ReviewInput) (*models.Review, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := productExists(s.products, *in.Product); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID: *in.Product,
		UserID:    actor.ID,
		Review:    in.Review,
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// UpdateReview edits a review the actor wrote.
func (s *ReviewService) UpdateReview(actor *models.User, id string, in ReviewInput, partial bool) (*models.Review, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(actor, action, nil); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, review); err != nil {
		return nil, err
	}

	target := in
	if partial {
		target = ReviewInput{Product: &review.ProductID, Review: review.Review}
		if in.Product != nil {
			target.Product = in.Product
		}
		if in.Review != nil {
			target.Review = in.Review
		}
	}
	if err := validateInput(target); err != nil {
		return nil, err
	}
	if in.Product != nil && *in.Product != review.ProductID {
		if err := productExists(s.products, *in.Product); err != nil {
			return nil, err
		}
	}

	if in.Product != nil {
		review.ProductID = *in.Product
	}
	if in.Review != nil {
		review.Review = in.Review
	}
	if err := s.reviews.Update(review); err != nil {
		return nil, fmt.Errorf("failed to update review %s: %w", id, err)
	}
	return review, nil
}

// DeleteReview removes a review the actor wrote.
func (s *ReviewService) DeleteReview(actor *models.User, id string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, nil); err != nil {
		return err
	}
	review, err := s.reviews.GetByID(id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, review); err != nil {
		return err
	}
	return s.reviews.Delete(id)
}

// productExists reports a reference to an unknown product as a field error.
func productExists(products repositories.ProductRepository, id string) error {
	if _, err := products.GetByID(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newValidationError("product", fmt.Sprintf("Invalid pk %q - object does not exist.", id))
		}
		return err
	}
	return nil
}
