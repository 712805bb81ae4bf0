package repositories

import (
	"errors"

	"lemari/internal/models"

	"gorm.io/gorm"
)

// TokenRepository stores session tokens, at most one per user.
type TokenRepository interface {
	// GetOrCreate returns the user's token, creating it with a key from
	// newKey when none exists. A stored token whose key fails valid is
	// replaced in the same transaction.
	GetOrCreate(userID string, valid func(key string) bool, newKey func() (string, error)) (*models.Token, error)
	GetByKey(key string) (*models.Token, error)
	// DeleteByUserID fails with ErrNotFound when the user has no token.
	DeleteByUserID(userID string) error
}

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{db: db}
}

func (r *GORMTokenRepository) GetOrCreate(userID string, valid func(key string) bool, newKey func() (string, error)) (*models.Token, error) {
	var token models.Token
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Take(&token, "user_id = ?", userID).Error
		switch {
		case err == nil:
			if valid == nil || valid(token.Key) {
				return nil
			}
			// Stale key, e.g. signed with a rotated secret.
			if err := tx.Delete(&token).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		key, err := newKey()
		if err != nil {
			return err
		}
		token = models.Token{Key: key, UserID: userID}
		return tx.Create(&token).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent login created it first.
		token = models.Token{}
		err = r.db.Take(&token, "user_id = ?", userID).Error
	}
	if err != nil {
		return nil, wrap(err, "failed to get or create token for user %s", userID)
	}
	return &token, nil
}

func (r *GORMTokenRepository) GetByKey(key string) (*models.Token, error) {
	var token models.Token
	if err := r.db.Take(&token, "token_key = ?", key).Error; err != nil {
		return nil, wrap(err, "token")
	}
	return &token, nil
}

func (r *GORMTokenRepository) DeleteByUserID(userID string) error {
	res := r.db.Where("user_id = ?", userID).Delete(&models.Token{})
	if res.Error != nil {
		return wrap(res.Error, "failed to delete token of user %s", userID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "token of user %s", userID)
	}
	return nil
}
