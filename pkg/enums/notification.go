package enums

import "fmt"

// NotificationSeverity drives how a notification renders in clients.
type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeveritySuccess NotificationSeverity = "success"
	NotificationSeverityPrimary NotificationSeverity = "primary"
)

var validNotificationSeverities = []NotificationSeverity{
	NotificationSeverityInfo,
	NotificationSeverityWarning,
	NotificationSeveritySuccess,
	NotificationSeverityPrimary,
}

// IsValid checks whether the given severity matches the canonical enum.
func (n NotificationSeverity) IsValid() bool {
	for _, candidate := range validNotificationSeverities {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationSeverity converts raw strings into NotificationSeverity.
func ParseNotificationSeverity(value string) (NotificationSeverity, error) {
	for _, candidate := range validNotificationSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification severity %q", value)
}

// RecipientType scopes a notification to the principal table it targets.
type RecipientType string

const (
	RecipientTypeCustomer RecipientType = "customer"
	RecipientTypeAgent    RecipientType = "agent"
	RecipientTypeAdmin    RecipientType = "admin"
)

var validRecipientTypes = []RecipientType{
	RecipientTypeCustomer,
	RecipientTypeAgent,
	RecipientTypeAdmin,
}

// IsValid checks whether the given type matches the canonical enum.
func (r RecipientType) IsValid() bool {
	for _, candidate := range validRecipientTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecipientType converts raw strings into RecipientType.
func ParseRecipientType(value string) (RecipientType, error) {
	for _, candidate := range validRecipientTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recipient type %q", value)
}
