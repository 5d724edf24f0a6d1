package enums

import "fmt"

// PurchaseStatus tracks the lifecycle of an insurance purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending       PurchaseStatus = "pending"
	PurchaseStatusActive        PurchaseStatus = "active"
	PurchaseStatusAboutToExpire PurchaseStatus = "about_to_expire"
	PurchaseStatusExpired       PurchaseStatus = "expired"
	PurchaseStatusRejected      PurchaseStatus = "rejected"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusPending,
	PurchaseStatusActive,
	PurchaseStatusAboutToExpire,
	PurchaseStatusExpired,
	PurchaseStatusRejected,
}

// legacyPurchaseStatuses maps enum values stored by earlier revisions onto the
// canonical set.
var legacyPurchaseStatuses = map[string]PurchaseStatus{
	"pending_payment": PurchaseStatusPending,
	"payment_due":     PurchaseStatusPending,
}

// String implements fmt.Stringer.
func (p PurchaseStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseStatus.
func (p PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseStatus converts raw input into a PurchaseStatus, collapsing
// legacy aliases onto the canonical value.
func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	for _, candidate := range validPurchaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if mapped, ok := legacyPurchaseStatuses[value]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
