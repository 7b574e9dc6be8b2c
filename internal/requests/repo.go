package requests

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/pagination"
)

// Repository manages persistence for access transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.AccessTransaction) error
	CreatePolicy(ctx context.Context, doc *models.PolicyDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error)
	FindByIDWithPolicy(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error)
	FindActiveByAssetConsumer(ctx context.Context, assetID, consumerOrgID uuid.UUID, now time.Time) (*models.AccessTransaction, error)
	ListForOrg(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]models.AccessTransaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus, expiresAt *time.Time) (bool, error)
}

// ListFilter narrows org-scoped listings.
type ListFilter struct {
	Status *enums.TransactionStatus
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a requests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, row *models.AccessTransaction) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) CreatePolicy(ctx context.Context, doc *models.PolicyDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error) {
	var row models.AccessTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByIDWithPolicy(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error) {
	var row models.AccessTransaction
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindActiveByAssetConsumer returns the transaction defending the
// uniqueness invariant: either still pending, or completed with a
// subscription window covering now. Expiry is evaluated against the
// caller's clock, never persisted.
func (r *repository) FindActiveByAssetConsumer(ctx context.Context, assetID, consumerOrgID uuid.UUID, now time.Time) (*models.AccessTransaction, error) {
	var row models.AccessTransaction
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND consumer_org_id = ?", assetID, consumerOrgID).
		Where(
			r.db.Where("status IN ?", []enums.TransactionStatus{
				enums.TransactionStatusPendingSubject,
				enums.TransactionStatusPendingHolder,
			}).Or(
				"status = ? AND (subscription_expires_at IS NULL OR subscription_expires_at > ?)",
				enums.TransactionStatusCompleted, now,
			),
		).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListForOrg(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]models.AccessTransaction, error) {
	q := r.db.WithContext(ctx).
		Where("consumer_org_id = ? OR subject_org_id = ? OR holder_org_id = ?", orgID, orgID, orgID)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		q = q.Where(
			"(created_at, id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	limit := pagination.LimitWithBuffer(filter.Limit)

	var rows []models.AccessTransaction
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus performs the compare-and-swap transition write. The WHERE
// clause pins the expected source status; zero rows affected means another
// actor already moved the row.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus, expiresAt *time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	if expiresAt != nil {
		updates["subscription_expires_at"] = *expiresAt
	}

	res := r.db.WithContext(ctx).
		Model(&models.AccessTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
