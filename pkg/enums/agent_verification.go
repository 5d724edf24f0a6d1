package enums

import "fmt"

// AgentVerificationStatus tracks the review state of an agent's license.
type AgentVerificationStatus string

const (
	AgentVerificationInReview AgentVerificationStatus = "in_review"
	AgentVerificationApproved AgentVerificationStatus = "approved"
	AgentVerificationRejected AgentVerificationStatus = "rejected"
)

var validAgentVerificationStatuses = []AgentVerificationStatus{
	AgentVerificationInReview,
	AgentVerificationApproved,
	AgentVerificationRejected,
}

// IsValid reports whether the value is a known AgentVerificationStatus.
func (a AgentVerificationStatus) IsValid() bool {
	for _, candidate := range validAgentVerificationStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgentVerificationStatus converts raw input into an AgentVerificationStatus.
func ParseAgentVerificationStatus(value string) (AgentVerificationStatus, error) {
	for _, candidate := range validAgentVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid agent verification status %q", value)
}
