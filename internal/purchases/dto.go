package purchases

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// CarParams describes the vehicle snapshot captured with a purchase. A fresh
// car row is written per purchase so later edits stay scoped to that policy.
type CarParams struct {
	Brand        string `json:"brand" validate:"required"`
	Model        string `json:"model" validate:"required"`
	SubModel     string `json:"sub_model"`
	Year         int    `json:"year" validate:"required,gte=1950"`
	Registration string `json:"registration" validate:"required"`
	Province     string `json:"province" validate:"required"`
	Color        string `json:"color"`
}

// CreateParams captures a new purchase request. CustomerID is taken from the
// caller's token for customer requests, so it is validated in the service.
type CreateParams struct {
	CustomerID    uuid.UUID  `json:"customer_id"`
	AgentID       *uuid.UUID `json:"agent_id"`
	RateID        uuid.UUID  `json:"rate_id" validate:"required"`
	PaymentMethod string     `json:"payment_method" validate:"omitempty,oneof=full installment"`
	Car           CarParams  `json:"car" validate:"required"`

	CitizenCardURI     *string `json:"citizen_card_uri"`
	CarRegistrationURI *string `json:"car_registration_uri"`
	PaymentSlipURI     *string `json:"payment_slip_uri"`
	ConsentFormURI     *string `json:"consent_form_uri"`
}

// CarUpdateParams carries partial edits to the purchase-owned car row.
type CarUpdateParams struct {
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	SubModel     *string `json:"sub_model"`
	Year         *int    `json:"year"`
	Registration *string `json:"registration"`
	Province     *string `json:"province"`
	Color        *string `json:"color"`
}

// UpdateParams carries a partial edit to a purchase. Status changes follow
// the manual transition rules; coverage dates are required when activating.
// PolicyNumber is an admin-only override of the allocated number.
type UpdateParams struct {
	Status       *string    `json:"status"`
	RejectReason *string    `json:"reject_reason"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	PolicyNumber *string    `json:"policy_number"`

	PaymentMethod *string `json:"payment_method"`

	CitizenCardURI     *string `json:"citizen_card_uri"`
	CarRegistrationURI *string `json:"car_registration_uri"`
	PaymentSlipURI     *string `json:"payment_slip_uri"`
	PolicyFileURI      *string `json:"policy_file_uri"`
	InstallmentDocURI  *string `json:"installment_doc_uri"`
	ConsentFormURI     *string `json:"consent_form_uri"`

	Car *CarUpdateParams `json:"car"`
}

func (p UpdateParams) empty() bool {
	return p.Status == nil && p.RejectReason == nil && p.StartDate == nil && p.EndDate == nil &&
		p.PolicyNumber == nil && p.PaymentMethod == nil && p.CitizenCardURI == nil &&
		p.CarRegistrationURI == nil && p.PaymentSlipURI == nil && p.PolicyFileURI == nil &&
		p.InstallmentDocURI == nil && p.ConsentFormURI == nil && p.Car == nil
}

// ListParams configures a paginated purchase listing.
type ListParams struct {
	Status string
	Search string
	Limit  int
	Cursor string
}

// ListResult wraps returned purchases and the cursor for the next page.
type ListResult struct {
	Items  []models.Purchase `json:"items"`
	Cursor string            `json:"cursor"`
}

type listQuery struct {
	CustomerID *uuid.UUID
	AgentID    *uuid.UUID
	Status     string
	Search     string
	Limit      int
	Cursor     *pagination.Cursor
}
