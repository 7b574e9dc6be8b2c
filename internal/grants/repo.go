package grants

import (
	"context"
	"errors"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GovernanceRepository reads the catalog's governance metadata for assets.
// Rows are owned by the catalog service; this side never writes them.
type GovernanceRepository interface {
	WithTx(tx *gorm.DB) GovernanceRepository
	FindByAssetID(ctx context.Context, assetID uuid.UUID) (*models.AssetGovernance, error)
}

type governanceRepository struct {
	db *gorm.DB
}

// NewGovernanceRepository returns a governance repository bound to the provided database.
func NewGovernanceRepository(db *gorm.DB) GovernanceRepository {
	return &governanceRepository{db: db}
}

func (r *governanceRepository) WithTx(tx *gorm.DB) GovernanceRepository {
	if tx == nil {
		return r
	}
	return &governanceRepository{db: tx}
}

func (r *governanceRepository) FindByAssetID(ctx context.Context, assetID uuid.UUID) (*models.AssetGovernance, error) {
	var row models.AssetGovernance
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
