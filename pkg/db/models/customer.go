package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a policy holder account.
type Customer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string    `gorm:"column:first_name;type:text;not null"`
	LastName     string    `gorm:"column:last_name;type:text;not null"`
	Email        string    `gorm:"column:email;type:text;not null;default:''"`
	Address      string    `gorm:"column:address;type:text;not null;default:''"`
	BirthDate    time.Time `gorm:"column:birth_date;type:date;not null"`
	Phone        string    `gorm:"column:phone;type:text;not null"`
	Username     string    `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null"`
	ProfileImage string    `gorm:"column:profile_image;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
