package models

// Rate is a 0..5 score a user gives a product.
type Rate struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string `json:"user" gorm:"type:varchar(36);not null;index"`
	ProductID string `json:"product" gorm:"type:varchar(36);not null;index"`
	Rating    int    `json:"rating" gorm:"not null;default:0"`
}

func (r *Rate) OwnerID() string { return r.UserID }

func (r *Rate) Kind() string { return "rating" }
