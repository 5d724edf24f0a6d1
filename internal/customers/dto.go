package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
)

// Profile is the customer account shape returned by the API. The password
// hash never leaves the service layer.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	BirthDate    time.Time `json:"birth_date"`
	Phone        string    `json:"phone"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromModel maps a customer row to its API shape.
func FromModel(customer *models.Customer) Profile {
	return Profile{
		ID:           customer.ID,
		FirstName:    customer.FirstName,
		LastName:     customer.LastName,
		Email:        customer.Email,
		Address:      customer.Address,
		BirthDate:    customer.BirthDate,
		Phone:        customer.Phone,
		Username:     customer.Username,
		ProfileImage: customer.ProfileImage,
		CreatedAt:    customer.CreatedAt,
	}
}

// UpdateParams carries a partial profile edit.
type UpdateParams struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profile_image"`
}

// ListParams configures a paginated customer listing.
type ListParams struct {
	Search string
	Limit  int
	Cursor string
}

// ListResult wraps returned profiles and the cursor for the next page.
type ListResult struct {
	Items  []Profile `json:"items"`
	Cursor string    `json:"cursor"`
}
