package repositories

import (
	"lemari/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return wrap(err, "failed to create user %s", user.Username)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Take(&user, "username = ?", username).Error; err != nil {
		return nil, wrap(err, "user with username %s", username)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Take(&user, "email = ?", email).Error; err != nil {
		return nil, wrap(err, "user with email %s", email)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Take(&user, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "user with ID %s", id)
	}
	return &user, nil
}

// Update writes the editable profile columns of user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(user).
		Select("username", "email", "country", "profile_picture", "is_staff", "is_superuser").
		Updates(user)
	if res.Error != nil {
		return wrap(res.Error, "failed to update user %s", user.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "user with ID %s", user.ID)
	}
	return nil
}

// Delete removes a user together with its token, its ratings, reviews and
// orders, and its products along with every row that references them.
func (r *GORMUserRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB {
			return tx.Model(&models.Product{}).Select("id").Where("user_id = ?", id)
		}

		for _, child := range []interface{}{&models.Rate{}, &models.Review{}, &models.Order{}} {
			err := tx.Where("user_id = ? OR product_id IN (?)", id, owned()).Delete(child).Error
			if err != nil {
				return wrap(err, "failed to delete rows owned by user %s", id)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return wrap(err, "failed to delete products of user %s", id)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return wrap(err, "failed to delete token of user %s", id)
		}

		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return wrap(res.Error, "failed to delete user %s", id)
		}
		if res.RowsAffected == 0 {
			return wrap(gorm.ErrRecordNotFound, "user with ID %s", id)
		}
		return nil
	})
}
