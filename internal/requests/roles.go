package requests

import (
	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
)

// ResolveRole maps an acting organization onto its primary role in a
// transaction. Checks run consumer, subject, holder in workflow order, so
// an org that is both subject and holder resolves as subject. Guards must
// use HasRole instead, which tests the specific role a status requires.
func ResolveRole(tx *models.AccessTransaction, orgID uuid.UUID) enums.ActorRole {
	if tx == nil || orgID == uuid.Nil {
		return enums.ActorRoleNone
	}
	switch orgID {
	case tx.ConsumerOrgID:
		return enums.ActorRoleConsumer
	case tx.SubjectOrgID:
		return enums.ActorRoleSubject
	case tx.HolderOrgID:
		return enums.ActorRoleHolder
	default:
		return enums.ActorRoleNone
	}
}

// HasRole reports whether the organization holds the given role on the
// transaction. Subject and holder may be the same org; HasRole keeps a
// combined org able to act in both approval stages.
func HasRole(tx *models.AccessTransaction, orgID uuid.UUID, role enums.ActorRole) bool {
	if tx == nil || orgID == uuid.Nil {
		return false
	}
	switch role {
	case enums.ActorRoleConsumer:
		return orgID == tx.ConsumerOrgID
	case enums.ActorRoleSubject:
		return orgID == tx.SubjectOrgID
	case enums.ActorRoleHolder:
		return orgID == tx.HolderOrgID
	default:
		return false
	}
}

// RoleForStatus returns the role allowed to act on a transaction in the
// given pending status.
func RoleForStatus(status enums.TransactionStatus) enums.ActorRole {
	switch status {
	case enums.TransactionStatusPendingSubject:
		return enums.ActorRoleSubject
	case enums.TransactionStatusPendingHolder:
		return enums.ActorRoleHolder
	default:
		return enums.ActorRoleNone
	}
}
