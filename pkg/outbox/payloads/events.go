package payloads

import (
	"time"

	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/google/uuid"
)

// RequestCreatedEvent signals a consumer opened a new access request.
type RequestCreatedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AssetID       uuid.UUID `json:"asset_id"`
	ConsumerOrgID uuid.UUID `json:"consumer_org_id"`
	SubjectOrgID  uuid.UUID `json:"subject_org_id"`
	HolderOrgID   uuid.UUID `json:"holder_org_id"`
	Purpose       string    `json:"purpose"`
}

// RequestPreApprovedEvent is emitted when the subject passes a request on to the holder.
type RequestPreApprovedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AssetID       uuid.UUID `json:"asset_id"`
	ConsumerOrgID uuid.UUID `json:"consumer_org_id"`
	HolderOrgID   uuid.UUID `json:"holder_org_id"`
}

// RequestCompletedEvent carries the final grant window once the holder approves.
type RequestCompletedEvent struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	AssetID       uuid.UUID  `json:"asset_id"`
	ConsumerOrgID uuid.UUID  `json:"consumer_org_id"`
	HolderOrgID   uuid.UUID  `json:"holder_org_id"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// RequestDeniedEvent reports a denial by either approver, or a consumer cancel.
type RequestDeniedEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	AssetID       uuid.UUID               `json:"asset_id"`
	ConsumerOrgID uuid.UUID               `json:"consumer_org_id"`
	DeniedByOrgID uuid.UUID               `json:"denied_by_org_id"`
	ActorRole     enums.ActorRole         `json:"actor_role"`
	Status        enums.TransactionStatus `json:"status"`
	Notes         string                  `json:"notes,omitempty"`
}
