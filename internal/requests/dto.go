package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/pagination"
)

// CreateInput captures the request wizard submission. Access duration is
// deliberately absent: it is resolved from the asset's governance
// metadata at creation time, never chosen by the consumer.
type CreateInput struct {
	AssetID       uuid.UUID
	SubjectOrgID  uuid.UUID
	HolderOrgID   uuid.UUID
	Purpose       string
	Justification string
	ActorOrgID    uuid.UUID
	ActorUserID   uuid.UUID
}

// CreateResult reports either a freshly created transaction or the
// existing active one the caller is redirected to.
type CreateResult struct {
	Transaction *models.AccessTransaction
	Redirected  bool
}

// TransitionInput captures an approval-stage action on a transaction.
type TransitionInput struct {
	ID          uuid.UUID
	Action      enums.ApprovalAction
	ActorOrgID  uuid.UUID
	ActorUserID uuid.UUID
	Notes       string
}

// ListInput scopes a listing to the acting organization.
type ListInput struct {
	OrgID  uuid.UUID
	Status *enums.TransactionStatus
	Pager  pagination.Params
}

// ListResult is one cursor page of transactions.
type ListResult struct {
	Transactions []models.AccessTransaction
	NextCursor   string
}

// Detail is the full read-side view of a transaction.
type Detail struct {
	Transaction *models.AccessTransaction
	Policy      *models.PolicyDocument
	History     []models.ApprovalEntry
	ActorRole   enums.ActorRole
}

// transitionRule describes one row of the state machine table.
type transitionRule struct {
	from enums.TransactionStatus
	role enums.ActorRole
	to   enums.TransactionStatus
}

// transitionTable is the closed set of allowed transitions. Deny appears
// twice because its target depends on the stage being denied.
var transitionTable = map[enums.ApprovalAction][]transitionRule{
	enums.ApprovalActionPreApprove: {
		{from: enums.TransactionStatusPendingSubject, role: enums.ActorRoleSubject, to: enums.TransactionStatusPendingHolder},
	},
	enums.ApprovalActionApprove: {
		{from: enums.TransactionStatusPendingHolder, role: enums.ActorRoleHolder, to: enums.TransactionStatusCompleted},
	},
	enums.ApprovalActionDeny: {
		{from: enums.TransactionStatusPendingSubject, role: enums.ActorRoleSubject, to: enums.TransactionStatusDeniedSubject},
		{from: enums.TransactionStatusPendingHolder, role: enums.ActorRoleHolder, to: enums.TransactionStatusDeniedHolder},
	},
}

func ruleFor(action enums.ApprovalAction, from enums.TransactionStatus) *transitionRule {
	for i := range transitionTable[action] {
		if transitionTable[action][i].from == from {
			return &transitionTable[action][i]
		}
	}
	return nil
}

// expiresAtFor computes the subscription window for a completed transaction.
func expiresAtFor(now time.Time, durationDays int) time.Time {
	return now.Add(time.Duration(durationDays) * 24 * time.Hour)
}
