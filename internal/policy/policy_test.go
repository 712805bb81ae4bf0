package policy_test

import (
	"testing"

	"lemari/internal/models"
	"lemari/internal/policy"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := &models.User{ID: "owner"}
	stranger := &models.User{ID: "stranger"}
	product := &models.Product{ID: "p1", UserID: owner.ID}
	review := &models.Review{ID: "r1", UserID: owner.ID}
	rate := &models.Rate{ID: "rt1", UserID: owner.ID}

	tests := []struct {
		name     string
		actor    *models.User
		action   policy.Action
		resource policy.Resource
		wantErr  error
	}{
		{"anonymous list", nil, policy.ActionList, nil, nil},
		{"anonymous retrieve", nil, policy.ActionRetrieve, product, nil},
		{"anonymous create", nil, policy.ActionCreate, nil, policy.ErrUnauthenticated},
		{"anonymous delete", nil, policy.ActionDelete, product, policy.ErrUnauthenticated},
		{"user create", stranger, policy.ActionCreate, nil, nil},
		{"owner update product", owner, policy.ActionUpdate, product, nil},
		{"owner delete review", owner, policy.ActionDelete, review, nil},
		{"stranger update product", stranger, policy.ActionUpdate, product, policy.ErrPermissionDenied},
		{"stranger patch review", stranger, policy.ActionPartialUpdate, review, policy.ErrPermissionDenied},
		{"stranger delete rating", stranger, policy.ActionDelete, rate, policy.ErrPermissionDenied},
		{"stranger reads product", stranger, policy.ActionRetrieve, product, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.actor, tt.action, tt.resource)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorize_DenialMessage(t *testing.T) {
	product := &models.Product{ID: "p1", UserID: "owner"}

	err := policy.Authorize(&models.User{ID: "x"}, policy.ActionUpdate, product)
	assert.EqualError(t, err, "you do not have permission to edit this product")

	err = policy.Authorize(&models.User{ID: "x"}, policy.ActionDelete, &models.Review{UserID: "owner"})
	assert.EqualError(t, err, "you do not have permission to delete this review")
}

func TestAuthenticated(t *testing.T) {
	assert.ErrorIs(t, policy.Authenticated(nil), policy.ErrUnauthenticated)
	assert.NoError(t, policy.Authenticated(&models.User{ID: "u"}))
}
