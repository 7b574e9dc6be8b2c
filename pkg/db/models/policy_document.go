package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/pkg/types"
)

// PolicyDocument is the immutable usage policy generated when an access
// transaction is created. It snapshots the terms the consumer agreed to;
// later edits to the asset's governance metadata never touch it.
type PolicyDocument struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID    uuid.UUID      `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex:ux_policy_documents_transaction"`
	AssetID          uuid.UUID      `gorm:"column:asset_id;type:uuid;not null"`
	AssignerOrgID    uuid.UUID      `gorm:"column:assigner_org_id;type:uuid;not null"`
	AssigneeOrgID    uuid.UUID      `gorm:"column:assignee_org_id;type:uuid;not null"`
	Action           string         `gorm:"column:action;not null;default:'use'"`
	Purpose          string         `gorm:"column:purpose;not null"`
	ElapsedTimeLimit string         `gorm:"column:elapsed_time_limit;not null"`
	Permissions      types.TermList `gorm:"column:permissions;type:jsonb;serializer:json"`
	Prohibitions     types.TermList `gorm:"column:prohibitions;type:jsonb;serializer:json"`
	Obligations      types.TermList `gorm:"column:obligations;type:jsonb;serializer:json"`
	ExternalTermsURL *string        `gorm:"column:external_terms_url"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
}
