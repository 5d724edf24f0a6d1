package auth

import (
	"time"

	"github.com/motorsure/brokerage-backend/internal/agents"
	"github.com/motorsure/brokerage-backend/internal/customers"
)

// LoginRequest carries the credentials for any of the three login surfaces.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CustomerLoginResponse returns the token and the customer's own profile.
type CustomerLoginResponse struct {
	AccessToken string            `json:"access_token"`
	Customer    customers.Profile `json:"customer"`
}

// AgentLoginResponse returns the token and the agent's own profile.
type AgentLoginResponse struct {
	AccessToken string         `json:"access_token"`
	Agent       agents.Profile `json:"agent"`
}

// AdminLoginResponse returns the token and the admin display name.
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	DisplayName string `json:"display_name"`
}

// RegisterCustomerRequest contains the payload for customer onboarding.
type RegisterCustomerRequest struct {
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Address   string    `json:"address"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Phone     string    `json:"phone" validate:"required"`
	Username  string    `json:"username" validate:"required,min=4"`
	Password  string    `json:"password" validate:"required,min=8"`
}

// RegisterAgentRequest contains the payload for agent onboarding. New agents
// start in license review and cannot be assigned purchases until approved.
type RegisterAgentRequest struct {
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	LicenseNumber  string    `json:"license_number" validate:"required"`
	CardExpiryDate time.Time `json:"card_expiry_date" validate:"required"`
	Address        string    `json:"address"`
	LineID         string    `json:"line_id"`
	Phone          string    `json:"phone" validate:"required"`
	BirthDate      time.Time `json:"birth_date" validate:"required"`
	Username       string    `json:"username" validate:"required,min=4"`
	Password       string    `json:"password" validate:"required,min=8"`
}
