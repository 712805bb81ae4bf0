package models

import "time"

// Review is free-text feedback on a product. A user may leave several.
type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string    `json:"product" gorm:"type:varchar(36);not null;index"`
	UserID     string    `json:"user" gorm:"type:varchar(36);not null;index"`
	Review     *string   `json:"review" gorm:"type:varchar(100)"`
	ReviewDate time.Time `json:"review_date" gorm:"autoCreateTime"`
}

func (r *Review) OwnerID() string { return r.UserID }

func (r *Review) Kind() string { return "review" }
