package approvals

import (
	"context"
	"fmt"
	"strings"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNotesLen = 2000

// Service defines operations that record approval ledger entries. The
// ledger is append-only; there is deliberately no update or delete.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, input AppendEntryInput) (*models.ApprovalEntry, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error)
}

type service struct {
	repo Repository
}

// AppendEntryInput captures the immutable data a ledger entry requires.
type AppendEntryInput struct {
	TransactionID uuid.UUID            `json:"transaction_id"`
	ActorOrgID    uuid.UUID            `json:"actor_org_id"`
	ActorUserID   uuid.UUID            `json:"actor_user_id"`
	Action        enums.ApprovalAction `json:"action"`
	Notes         string               `json:"notes"`
}

// NewService wires an approvals service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("approvals repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, tx *gorm.DB, input AppendEntryInput) (*models.ApprovalEntry, error) {
	if input.TransactionID == uuid.Nil {
		return nil, fmt.Errorf("transaction id is required")
	}
	if input.ActorOrgID == uuid.Nil {
		return nil, fmt.Errorf("actor org id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, fmt.Errorf("actor user id is required")
	}
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid approval action %q", input.Action)
	}

	entry := &models.ApprovalEntry{
		TransactionID: input.TransactionID,
		ActorOrgID:    input.ActorOrgID,
		ActorUserID:   input.ActorUserID,
		Action:        input.Action,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		if len(notes) > maxNotesLen {
			notes = notes[:maxNotesLen]
		}
		entry.Notes = &notes
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error) {
	if transactionID == uuid.Nil {
		return nil, fmt.Errorf("transaction id is required")
	}
	return s.repo.ListByTransactionID(ctx, transactionID)
}
