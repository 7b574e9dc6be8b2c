package approvals

import (
	"context"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for approval ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ApprovalEntry) error
	ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an approvals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ApprovalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error) {
	var entries []models.ApprovalEntry
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
