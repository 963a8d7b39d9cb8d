package models

import "time"

// Roles carried in the session token.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account that can sign in to the club website.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" validate:"required,min=6"` // bcrypt hash, never serialized
	Name      *string   `json:"name" gorm:"type:varchar(100)"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user may manage the shop.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
