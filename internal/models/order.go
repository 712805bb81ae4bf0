package models

import "time"

// Order is a user's purchase of one product. There is at most one order
// per (user, product) pair.
type Order struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product" gorm:"type:varchar(36);not null;uniqueIndex:idx_orders_user_product,priority:2"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UserID    string    `json:"user" gorm:"type:varchar(36);not null;uniqueIndex:idx_orders_user_product,priority:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) OwnerID() string { return o.UserID }

func (o *Order) Kind() string { return "order" }
