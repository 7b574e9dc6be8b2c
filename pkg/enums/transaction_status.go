package enums

import "fmt"

// TransactionStatus tracks the lifecycle of an access transaction.
type TransactionStatus string

const (
	TransactionStatusPendingSubject TransactionStatus = "pending_subject"
	TransactionStatusPendingHolder  TransactionStatus = "pending_holder"
	TransactionStatusCompleted      TransactionStatus = "completed"
	TransactionStatusDeniedSubject  TransactionStatus = "denied_subject"
	TransactionStatusDeniedHolder   TransactionStatus = "denied_holder"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPendingSubject,
	TransactionStatusPendingHolder,
	TransactionStatusCompleted,
	TransactionStatusDeniedSubject,
	TransactionStatusDeniedHolder,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status.
func (t TransactionStatus) IsTerminal() bool {
	switch t {
	case TransactionStatusCompleted, TransactionStatusDeniedSubject, TransactionStatusDeniedHolder:
		return true
	default:
		return false
	}
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
