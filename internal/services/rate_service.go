package services

import (
	"fmt"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"
)

// RateInput is the body of a rating write. A missing rating counts as 0.
type RateInput struct {
	Product *string `json:"product" validate:"required,uuid"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// RateService handles business logic related to ratings.
type RateService struct {
	rates    repositories.RateRepository
	products repositories.ProductRepository
}

// NewRateService creates a new RateService.
func NewRateService(rates repositories.RateRepository, products repositories.ProductRepository) *RateService {
	return &RateService{
		rates:    rates,
		products: products,
	}
}

// ListRates returns all ratings, or those of productID when non-empty.
func (s *RateService) ListRates(productID string) ([]models.Rate, error) {
	return s.rates.List(productID)
}

func (s *RateService) GetRate(id string) (*models.Rate, error) {
	return s.rates.GetByID(id)
}

// CreateRate stores a rating given by actor.
func (s *RateService) CreateRate(actor *models.User, in RateInput) (*models.Rate, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := productExists(s.products, *in.Product); err != nil {
		return nil, err
	}

	rate := &models.Rate{
		ProductID: *in.Product,
		UserID:    actor.ID,
	}
	if in.Rating != nil {
		rate.Rating = *in.Rating
	}
	if err := s.rates.Create(rate); err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rate, nil
}

// UpdateRate edits a rating the actor gave. On a full update an absent
// rating resets to 0.
func (s *RateService) UpdateRate(actor *models.User, id string, in RateInput, partial bool) (*models.Rate, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(actor, action, nil); err != nil {
		return nil, err
	}
	rate, err := s.rates.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, rate); err != nil {
		return nil, err
	}

	target := in
	if partial {
		target = RateInput{Product: &rate.ProductID, Rating: &rate.Rating}
		if in.Product != nil {
			target.Product = in.Product
		}
		if in.Rating != nil {
			target.Rating = in.Rating
		}
	}
	if err := validateInput(target); err != nil {
		return nil, err
	}
	if in.Product != nil && *in.Product != rate.ProductID {
		if err := productExists(s.products, *in.Product); err != nil {
			return nil, err
		}
	}

	if in.Product != nil {
		rate.ProductID = *in.Product
	}
	switch {
	case in.Rating != nil:
		rate.Rating = *in.Rating
	case !partial:
		rate.Rating = 0
	}
	if err := s.rates.Update(rate); err != nil {
		return nil, fmt.Errorf("failed to update rating %s: %w", id, err)
	}
	return rate, nil
}

// DeleteRate removes a rating the actor gave.
func (s *RateService) DeleteRate(actor *models.User, id string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, nil); err != nil {
		return err
	}
	rate, err := s.rates.GetByID(id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, rate); err != nil {
		return err
	}
	return s.rates.Delete(id)
}
