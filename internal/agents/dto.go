package agents

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
)

// Profile is the agent account shape returned by the API.
type Profile struct {
	ID                 uuid.UUID                     `json:"id"`
	FirstName          string                        `json:"first_name"`
	LastName           string                        `json:"last_name"`
	LicenseNumber      string                        `json:"license_number"`
	CardExpiryDate     time.Time                     `json:"card_expiry_date"`
	Address            string                        `json:"address"`
	ProfileImage       string                        `json:"profile_image"`
	LineID             string                        `json:"line_id"`
	Phone              string                        `json:"phone"`
	Note               string                        `json:"note"`
	Username           string                        `json:"username"`
	BirthDate          time.Time                     `json:"birth_date"`
	VerificationStatus enums.AgentVerificationStatus `json:"verification_status"`
	CreatedAt          time.Time                     `json:"created_at"`
}

// FromModel maps an agent row to its API shape.
func FromModel(agent *models.Agent) Profile {
	return Profile{
		ID:                 agent.ID,
		FirstName:          agent.FirstName,
		LastName:           agent.LastName,
		LicenseNumber:      agent.LicenseNumber,
		CardExpiryDate:     agent.CardExpiryDate,
		Address:            agent.Address,
		ProfileImage:       agent.ProfileImage,
		LineID:             agent.LineID,
		Phone:              agent.Phone,
		Note:               agent.Note,
		Username:           agent.Username,
		BirthDate:          agent.BirthDate,
		VerificationStatus: agent.VerificationStatus,
		CreatedAt:          agent.CreatedAt,
	}
}

// UpdateParams carries a partial profile edit.
type UpdateParams struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	LineID       *string `json:"line_id"`
	Note         *string `json:"note"`
	ProfileImage *string `json:"profile_image"`
}

// ListParams configures a paginated agent listing.
type ListParams struct {
	Search             string
	VerificationStatus string
	Limit              int
	Cursor             string
}

// ListResult wraps returned profiles and the cursor for the next page.
type ListResult struct {
	Items  []Profile `json:"items"`
	Cursor string    `json:"cursor"`
}
