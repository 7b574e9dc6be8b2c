package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/types"
)

// AssetGovernance is the read-only governance metadata attached to a
// catalog asset. The catalog service owns these rows; this core only
// ever reads them.
type AssetGovernance struct {
	AssetID           uuid.UUID       `gorm:"column:asset_id;type:uuid;primaryKey"`
	Permissions       types.TermList  `gorm:"column:permissions;type:jsonb;serializer:json"`
	Prohibitions      types.TermList  `gorm:"column:prohibitions;type:jsonb;serializer:json"`
	Obligations       types.TermList  `gorm:"column:obligations;type:jsonb;serializer:json"`
	AccessTimeoutDays *int            `gorm:"column:access_timeout_days"`
	ExternalTermsURL  *string         `gorm:"column:external_terms_url"`
	PriceAmount       decimal.Decimal `gorm:"column:price_amount;type:numeric(12,2);not null;default:0"`
	Currency          enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table name used by the catalog service.
func (AssetGovernance) TableName() string {
	return "asset_governance"
}
