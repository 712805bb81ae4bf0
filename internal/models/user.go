package models

import "time"

// User is an account holder. Every product, order, review, rating and
// session token it owns is removed together with it.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(200);not null"`
	Country        string    `json:"country" gorm:"type:varchar(100)"`
	ProfilePicture *string   `json:"profile_picture" gorm:"type:varchar(255)"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	IsStaff        bool      `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser    bool      `json:"is_superuser" gorm:"not null;default:false"`
	DateJoined     time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"-"`

	Products []Product `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders   []Order   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reviews  []Review  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Rates    []Rate    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token    *Token    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// OwnerID makes a user its own resource for self-only operations.
func (u *User) OwnerID() string { return u.ID }

// Kind names the resource in permission messages.
func (u *User) Kind() string { return "account" }
