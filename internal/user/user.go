package user

import (
	"time"
)

// User is the stored account record. The API never returns the
// password hash; the json tag keeps it out of every response.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// Repository interface defines the data access methods for users
type Repository interface {
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(u *User) error
}
