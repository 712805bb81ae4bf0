package services_test

import (
	"testing"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"
	"lemari/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const productUUID = "0b6a3f5e-2c1d-4e8f-9a7b-1c2d3e4f5a6b"

func TestReviewService_CreateReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	service := services.NewReviewService(reviews, products)

	products.On("GetByID", productUUID).Return(&models.Product{ID: productUUID}, nil).Once()
	reviews.On("Create", mock.AnythingOfType("*models.Review")).Return(nil).Once()

	review, err := service.CreateReview(&models.User{ID: "u1"}, services.ReviewInput{
		Product: strPtr(productUUID),
		Review:  strPtr("Fits well"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", review.UserID)
	assert.Equal(t, "Fits well", *review.Review)
	reviews.AssertExpectations(t)
}

func TestReviewService_CreateReview_Rejections(t *testing.T) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	service := services.NewReviewService(reviews, products)

	_, err := service.CreateReview(nil, services.ReviewInput{Product: strPtr(productUUID)})
	assert.ErrorIs(t, err, policy.ErrUnauthenticated)

	var verr *services.ValidationError
	_, err = service.CreateReview(&models.User{ID: "u1"}, services.ReviewInput{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["product"])

	long := string(make([]byte, 101))
	_, err = service.CreateReview(&models.User{ID: "u1"}, services.ReviewInput{Product: strPtr(productUUID), Review: &long})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Ensure this field has no more than 100 characters.", verr.Fields["review"])

	products.On("GetByID", productUUID).Return(nil, repositories.ErrNotFound).Once()
	_, err = service.CreateReview(&models.User{ID: "u1"}, services.ReviewInput{Product: strPtr(productUUID)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `Invalid pk "`+productUUID+`" - object does not exist.`, verr.Fields["product"])

	reviews.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReviewService_Ownership(t *testing.T) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	service := services.NewReviewService(reviews, products)
	stored := &models.Review{ID: "r1", ProductID: productUUID, UserID: "u1", Review: strPtr("ok")}

	reviews.On("GetByID", "r1").Return(stored, nil)

	_, err := service.UpdateReview(&models.User{ID: "u2"}, "r1", services.ReviewInput{Review: strPtr("bad")}, true)
	assert.EqualError(t, err, "you do not have permission to edit this review")
	assert.Equal(t, "ok", *stored.Review)

	err = service.DeleteReview(&models.User{ID: "u2"}, "r1")
	assert.EqualError(t, err, "you do not have permission to delete this review")

	_, err = service.UpdateReview(nil, "r1", services.ReviewInput{}, true)
	assert.ErrorIs(t, err, policy.ErrUnauthenticated)

	reviews.AssertNotCalled(t, "Update", mock.Anything)
	reviews.AssertNotCalled(t, "Delete", mock.Anything)

	reviews.On("Update", stored).Return(nil).Once()
	updated, err := service.UpdateReview(&models.User{ID: "u1"}, "r1", services.ReviewInput{Review: strPtr("great")}, true)
	require.NoError(t, err)
	assert.Equal(t, "great", *updated.Review)

	reviews.On("Delete", "r1").Return(nil).Once()
	assert.NoError(t, service.DeleteReview(&models.User{ID: "u1"}, "r1"))
}

func TestReviewService_ListReviews(t *testing.T) {
	reviews := new(MockReviewRepository)
	service := services.NewReviewService(reviews, new(MockProductRepository))

	reviews.On("List", productUUID).Return([]models.Review{{ID: "r1"}}, nil).Once()
	list, err := service.ListReviews(productUUID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRateService_CreateRate(t *testing.T) {
	rates := new(MockRateRepository)
	products := new(MockProductRepository)
	service := services.NewRateService(rates, products)

	products.On("GetByID", productUUID).Return(&models.Product{ID: productUUID}, nil)
	rates.On("Create", mock.AnythingOfType("*models.Rate")).Return(nil)

	rate, err := service.CreateRate(&models.User{ID: "u1"}, services.RateInput{Product: strPtr(productUUID), Rating: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, rate.Rating)
	assert.Equal(t, "u1", rate.UserID)

	rate, err = service.CreateRate(&models.User{ID: "u1"}, services.RateInput{Product: strPtr(productUUID)})
	require.NoError(t, err)
	assert.Equal(t, 0, rate.Rating)
}

func TestRateService_RatingRange(t *testing.T) {
	service := services.NewRateService(new(MockRateRepository), new(MockProductRepository))

	for _, rating := range []int{-1, 6} {
		_, err := service.CreateRate(&models.User{ID: "u1"}, services.RateInput{Product: strPtr(productUUID), Rating: intPtr(rating)})
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Rating must be between 0 to 5", verr.Fields["rating"])
	}
}

func TestRateService_Ownership(t *testing.T) {
	rates := new(MockRateRepository)
	service := services.NewRateService(rates, new(MockProductRepository))
	stored := &models.Rate{ID: "s1", ProductID: productUUID, UserID: "u1", Rating: 3}

	rates.On("GetByID", "s1").Return(stored, nil)

	_, err := service.UpdateRate(&models.User{ID: "u2"}, "s1", services.RateInput{Rating: intPtr(1)}, true)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)
	assert.Equal(t, 3, stored.Rating)
	assert.ErrorIs(t, service.DeleteRate(&models.User{ID: "u2"}, "s1"), policy.ErrPermissionDenied)
	rates.AssertNotCalled(t, "Update", mock.Anything)
	rates.AssertNotCalled(t, "Delete", mock.Anything)

	// A full update without a rating resets it.
	rates.On("Update", stored).Return(nil).Once()
	updated, err := service.UpdateRate(&models.User{ID: "u1"}, "s1", services.RateInput{Product: strPtr(productUUID)}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Rating)
}
