package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/pkg/enums"
)

// ApprovalEntry records one immutable approval-ledger action on an
// access transaction. Entries are append-only; no update or delete path
// exists anywhere in the codebase.
type ApprovalEntry struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID            `gorm:"column:transaction_id;type:uuid;not null;index"`
	ActorOrgID    uuid.UUID            `gorm:"column:actor_org_id;type:uuid;not null"`
	ActorUserID   uuid.UUID            `gorm:"column:actor_user_id;type:uuid;not null"`
	Action        enums.ApprovalAction `gorm:"column:action;type:approval_action;not null"`
	Notes         *string              `gorm:"column:notes"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
