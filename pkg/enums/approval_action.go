package enums

import "fmt"

// ApprovalAction names an action recorded in the approval ledger.
type ApprovalAction string

const (
	ApprovalActionCreate     ApprovalAction = "create"
	ApprovalActionPreApprove ApprovalAction = "pre_approve"
	ApprovalActionApprove    ApprovalAction = "approve"
	ApprovalActionDeny       ApprovalAction = "deny"
	ApprovalActionCancel     ApprovalAction = "cancel"
)

var validApprovalActions = []ApprovalAction{
	ApprovalActionCreate,
	ApprovalActionPreApprove,
	ApprovalActionApprove,
	ApprovalActionDeny,
	ApprovalActionCancel,
}

// String implements fmt.Stringer.
func (a ApprovalAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ApprovalAction.
func (a ApprovalAction) IsValid() bool {
	for _, candidate := range validApprovalActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalAction converts raw input into an ApprovalAction.
func ParseApprovalAction(value string) (ApprovalAction, error) {
	for _, candidate := range validApprovalActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval action %q", value)
}
