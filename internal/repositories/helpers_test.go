package repositories_test

import (
	"testing"

	"lemari/internal/database"
	"lemari/internal/models"
	"lemari/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", database.MemoryDSN(uuid.NewString()), "silent")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Country: "ID", Password: "x"}
	require.NoError(t, repositories.NewGORMUserRepository(db).Create(user))
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, owner *models.User, name string, price string, stock int, category string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      category,
		UserID:        owner.ID,
	}
	require.NoError(t, repositories.NewGORMProductRepository(db).Create(product))
	return product
}

func stockOf(t *testing.T, db *gorm.DB, productID string) int {
	t.Helper()
	product, err := repositories.NewGORMProductRepository(db).GetByID(productID)
	require.NoError(t, err)
	return product.StockQuantity
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
