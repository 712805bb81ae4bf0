package models

import "time"

// Token is the single reusable session credential of a user. It lives
// from the first successful login until logout.
type Token struct {
	Key       string    `json:"token" gorm:"column:token_key;primaryKey;type:varchar(512)"`
	UserID    string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
