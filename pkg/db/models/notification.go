package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to a recipient.
type Notification struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID       uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null"`
	RecipientType     enums.RecipientType        `gorm:"column:recipient_type;type:text;not null"`
	Message           string                     `gorm:"column:message;type:text;not null"`
	Severity          enums.NotificationSeverity `gorm:"column:severity;type:text;not null;default:'info'"`
	SenderName        string                     `gorm:"column:sender_name;type:text;not null;default:'System'"`
	SenderRole        string                     `gorm:"column:sender_role;type:text;not null;default:'System'"`
	RelatedPurchaseID *uuid.UUID                 `gorm:"column:related_purchase_id;type:uuid"`
	ReadAt            *time.Time                 `gorm:"column:read_at;type:timestamptz"`
	CreatedAt         time.Time                  `gorm:"column:created_at;type:timestamptz;default:now()"`
}
