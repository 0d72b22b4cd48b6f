package enums

import "fmt"

// ContactStatus tracks follow-up on a contact form submission.
type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusCompleted ContactStatus = "completed"
)

var validContactStatuses = []ContactStatus{
	ContactStatusNew,
	ContactStatusContacted,
	ContactStatusCompleted,
}

// String implements fmt.Stringer.
func (s ContactStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is recognized.
func (s ContactStatus) IsValid() bool {
	for _, candidate := range validContactStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContactStatus converts a raw string into a ContactStatus.
func ParseContactStatus(value string) (ContactStatus, error) {
	for _, candidate := range validContactStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact status %q", value)
}

// ContactBudget is the self-declared budget bracket of a prospect.
type ContactBudget string

const (
	ContactBudgetSmall  ContactBudget = "small"
	ContactBudgetMedium ContactBudget = "medium"
	ContactBudgetLarge  ContactBudget = "large"
	ContactBudgetCustom ContactBudget = "custom"
)

var validContactBudgets = []ContactBudget{
	ContactBudgetSmall,
	ContactBudgetMedium,
	ContactBudgetLarge,
	ContactBudgetCustom,
}

// IsValid reports whether the budget bracket is recognized.
func (b ContactBudget) IsValid() bool {
	for _, candidate := range validContactBudgets {
		if candidate == b {
			return true
		}
	}
	return false
}
