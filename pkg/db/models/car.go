package models

import (
	"time"

	"github.com/google/uuid"
)

// Car identifies the insured vehicle. A row is created per purchase, so edits
// through purchase endpoints only ever touch the purchase's own car record.
type Car struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Brand        string    `gorm:"column:brand;type:text;not null"`
	Model        string    `gorm:"column:model;type:text;not null"`
	SubModel     string    `gorm:"column:sub_model;type:text;not null;default:''"`
	Year         int       `gorm:"column:year;not null"`
	Registration string    `gorm:"column:registration;type:text;not null"`
	Province     string    `gorm:"column:province;type:text;not null"`
	Color        string    `gorm:"column:color;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Plate renders the human-readable registration used in notifications.
func (c Car) Plate() string {
	if c.Province == "" {
		return c.Registration
	}
	return c.Registration + " " + c.Province
}
