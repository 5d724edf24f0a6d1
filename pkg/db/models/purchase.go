package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/enums"
)

// Purchase links a customer, a car, an optional agent and a rate-table plan
// into one policy order. Coverage dates stay NULL until an operator sets
// them; the lifecycle job only ever touches rows with an end date.
type Purchase struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	AgentID       *uuid.UUID           `gorm:"column:agent_id;type:uuid"`
	CarID         uuid.UUID            `gorm:"column:car_id;type:uuid;not null"`
	RateID        uuid.UUID            `gorm:"column:rate_id;type:uuid;not null"`
	PurchaseDate  time.Time            `gorm:"column:purchase_date;type:timestamptz;not null;default:now()"`
	StartDate     *time.Time           `gorm:"column:start_date;type:date"`
	EndDate       *time.Time           `gorm:"column:end_date;type:date"`
	PolicyNumber  string               `gorm:"column:policy_number;type:text;not null;uniqueIndex"`
	Status        enums.PurchaseStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RejectReason  *string              `gorm:"column:reject_reason;type:text"`
	PaymentMethod enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'full'"`

	CitizenCardURI     *string `gorm:"column:citizen_card_uri;type:text"`
	CarRegistrationURI *string `gorm:"column:car_registration_uri;type:text"`
	PaymentSlipURI     *string `gorm:"column:payment_slip_uri;type:text"`
	PolicyFileURI      *string `gorm:"column:policy_file_uri;type:text"`
	InstallmentDocURI  *string `gorm:"column:installment_doc_uri;type:text"`
	ConsentFormURI     *string `gorm:"column:consent_form_uri;type:text"`

	Customer *Customer      `gorm:"foreignKey:CustomerID"`
	Agent    *Agent         `gorm:"foreignKey:AgentID"`
	Car      *Car           `gorm:"foreignKey:CarID"`
	Rate     *InsuranceRate `gorm:"foreignKey:RateID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
