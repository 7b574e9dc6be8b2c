package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/datalinea/dataspace-backend/pkg/enums"
)

// AccessTransaction is the central record of a data-access request as it
// moves through the three-party approval workflow.
type AccessTransaction struct {
	ID                    uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID               uuid.UUID               `gorm:"column:asset_id;type:uuid;not null"`
	ConsumerOrgID         uuid.UUID               `gorm:"column:consumer_org_id;type:uuid;not null"`
	SubjectOrgID          uuid.UUID               `gorm:"column:subject_org_id;type:uuid;not null"`
	HolderOrgID           uuid.UUID               `gorm:"column:holder_org_id;type:uuid;not null"`
	Purpose               string                  `gorm:"column:purpose;not null"`
	Justification         string                  `gorm:"column:justification;not null"`
	AccessDurationDays    int                     `gorm:"column:access_duration_days;not null;default:90"`
	Status                enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending_subject'"`
	PaymentStatus         enums.PaymentStatus     `gorm:"column:payment_status;type:payment_status;not null;default:'na'"`
	PriceAmount           decimal.Decimal         `gorm:"column:price_amount;type:numeric(12,2);not null;default:0"`
	Currency              enums.Currency          `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubscriptionExpiresAt *time.Time              `gorm:"column:subscription_expires_at"`
	Policy                *PolicyDocument         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Approvals             []ApprovalEntry         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
