package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category values accepted for a product.
const (
	CategoryPants   = "pants"
	CategoryTShirts = "t-shirts"
	CategoryShoes   = "shoes"
	CategoryJerseys = "jerseys"
	CategoryDresses = "dresses"
	CategorySocks   = "socks"
	CategoryShorts  = "shorts"
)

// Categories lists every valid category in display order.
var Categories = []string{
	CategoryPants, CategoryTShirts, CategoryShoes, CategoryJerseys,
	CategoryDresses, CategorySocks, CategoryShorts,
}

// Product is a listing owned by the user who created it.
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string          `json:"name" gorm:"type:varchar(100);not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(7,2);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Image         *string         `json:"image" gorm:"type:varchar(255)"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	Category      string          `json:"category" gorm:"type:varchar(15);not null;index"`
	CreatedDate   time.Time       `json:"created_date" gorm:"autoCreateTime"`
	UserID        string          `json:"user" gorm:"type:varchar(36);not null;index"`

	// AverageRating is computed from the product's ratings on read.
	AverageRating float64 `json:"average_rating" gorm:"-"`

	Orders  []Order  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews []Review `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Rates   []Rate   `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) OwnerID() string { return p.UserID }

func (p *Product) Kind() string { return "product" }
