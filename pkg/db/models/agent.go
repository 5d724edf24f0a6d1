package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/enums"
)

// Agent is a licensed broker handling customer purchases.
type Agent struct {
	ID                 uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName          string                        `gorm:"column:first_name;type:text;not null"`
	LastName           string                        `gorm:"column:last_name;type:text;not null"`
	LicenseNumber      string                        `gorm:"column:license_number;type:text;not null;uniqueIndex"`
	CardExpiryDate     time.Time                     `gorm:"column:card_expiry_date;type:date;not null"`
	Address            string                        `gorm:"column:address;type:text;not null"`
	ProfileImage       string                        `gorm:"column:profile_image;type:text;not null;default:''"`
	LineID             string                        `gorm:"column:line_id;type:text;not null;default:''"`
	Phone              string                        `gorm:"column:phone;type:text;not null"`
	Note               string                        `gorm:"column:note;type:text;not null;default:''"`
	Username           string                        `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash       string                        `gorm:"column:password_hash;type:text;not null"`
	BirthDate          time.Time                     `gorm:"column:birth_date;type:date;not null"`
	VerificationStatus enums.AgentVerificationStatus `gorm:"column:verification_status;type:text;not null;default:'in_review'"`
	CreatedAt          time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
