package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalrequests "github.com/datalinea/dataspace-backend/internal/requests"
	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/types"
)

type TransactionResponse struct {
	ID                    uuid.UUID               `json:"id"`
	AssetID               uuid.UUID               `json:"asset_id"`
	ConsumerOrgID         uuid.UUID               `json:"consumer_org_id"`
	SubjectOrgID          uuid.UUID               `json:"subject_org_id"`
	HolderOrgID           uuid.UUID               `json:"holder_org_id"`
	Purpose               string                  `json:"purpose"`
	Justification         string                  `json:"justification"`
	AccessDurationDays    int                     `json:"access_duration_days"`
	Status                enums.TransactionStatus `json:"status"`
	PaymentStatus         enums.PaymentStatus     `json:"payment_status"`
	PriceAmount           decimal.Decimal         `json:"price_amount"`
	Currency              enums.Currency          `json:"currency"`
	SubscriptionExpiresAt *time.Time              `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

type CreateResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Redirected  bool                `json:"redirected"`
}

type PolicyResponse struct {
	ID               uuid.UUID      `json:"id"`
	TransactionID    uuid.UUID      `json:"transaction_id"`
	AssetID          uuid.UUID      `json:"asset_id"`
	AssignerOrgID    uuid.UUID      `json:"assigner_org_id"`
	AssigneeOrgID    uuid.UUID      `json:"assignee_org_id"`
	Action           string         `json:"action"`
	Purpose          string         `json:"purpose"`
	ElapsedTimeLimit string         `json:"elapsed_time_limit"`
	Permissions      types.TermList `json:"permissions"`
	Prohibitions     types.TermList `json:"prohibitions"`
	Obligations      types.TermList `json:"obligations"`
	ExternalTermsURL *string        `json:"external_terms_url,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type ApprovalEntryResponse struct {
	ID          uuid.UUID            `json:"id"`
	ActorOrgID  uuid.UUID            `json:"actor_org_id"`
	ActorUserID uuid.UUID            `json:"actor_user_id"`
	Action      enums.ApprovalAction `json:"action"`
	Notes       *string              `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type DetailResponse struct {
	Transaction TransactionResponse     `json:"transaction"`
	Policy      *PolicyResponse         `json:"policy,omitempty"`
	History     []ApprovalEntryResponse `json:"history"`
	ActorRole   enums.ActorRole         `json:"actor_role"`
}

type ListResponse struct {
	Items      []TransactionResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

func toTransactionResponse(row *models.AccessTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                    row.ID,
		AssetID:               row.AssetID,
		ConsumerOrgID:         row.ConsumerOrgID,
		SubjectOrgID:          row.SubjectOrgID,
		HolderOrgID:           row.HolderOrgID,
		Purpose:               row.Purpose,
		Justification:         row.Justification,
		AccessDurationDays:    row.AccessDurationDays,
		Status:                row.Status,
		PaymentStatus:         row.PaymentStatus,
		PriceAmount:           row.PriceAmount,
		Currency:              row.Currency,
		SubscriptionExpiresAt: row.SubscriptionExpiresAt,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

func toPolicyResponse(doc *models.PolicyDocument) *PolicyResponse {
	if doc == nil {
		return nil
	}
	return &PolicyResponse{
		ID:               doc.ID,
		TransactionID:    doc.TransactionID,
		AssetID:          doc.AssetID,
		AssignerOrgID:    doc.AssignerOrgID,
		AssigneeOrgID:    doc.AssigneeOrgID,
		Action:           doc.Action,
		Purpose:          doc.Purpose,
		ElapsedTimeLimit: doc.ElapsedTimeLimit,
		Permissions:      doc.Permissions,
		Prohibitions:     doc.Prohibitions,
		Obligations:      doc.Obligations,
		ExternalTermsURL: doc.ExternalTermsURL,
		CreatedAt:        doc.CreatedAt,
	}
}

func toHistoryResponse(entries []models.ApprovalEntry) []ApprovalEntryResponse {
	out := make([]ApprovalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ApprovalEntryResponse{
			ID:          entry.ID,
			ActorOrgID:  entry.ActorOrgID,
			ActorUserID: entry.ActorUserID,
			Action:      entry.Action,
			Notes:       entry.Notes,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return out
}

func toDetailResponse(detail *internalrequests.Detail) DetailResponse {
	return DetailResponse{
		Transaction: toTransactionResponse(detail.Transaction),
		Policy:      toPolicyResponse(detail.Policy),
		History:     toHistoryResponse(detail.History),
		ActorRole:   detail.ActorRole,
	}
}

func toListResponse(result *internalrequests.ListResult) ListResponse {
	items := make([]TransactionResponse, 0, len(result.Transactions))
	for i := range result.Transactions {
		items = append(items, toTransactionResponse(&result.Transactions[i]))
	}
	return ListResponse{Items: items, NextCursor: result.NextCursor}
}
