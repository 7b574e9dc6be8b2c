package grants

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/types"
)

// DefaultDurationDays applies when the asset's governance metadata does
// not bound the access window.
const DefaultDurationDays = 90

// GrantTerms is the resolved grant descriptor for one asset. Empty term
// lists are a valid outcome ("no specific terms defined"), never an error.
type GrantTerms struct {
	AssetID          uuid.UUID       `json:"asset_id"`
	DurationDays     int             `json:"duration_days"`
	Permissions      types.TermList  `json:"permissions"`
	Prohibitions     types.TermList  `json:"prohibitions"`
	Obligations      types.TermList  `json:"obligations"`
	ExternalTermsURL *string         `json:"external_terms_url,omitempty"`
	PriceAmount      decimal.Decimal `json:"price_amount"`
	Currency         enums.Currency  `json:"currency"`
}

// Service derives grant terms from the asset's governance metadata.
// Resolution happens at wizard review time and again inside transaction
// creation; the creation-time values are what the policy snapshots.
type Service interface {
	Resolve(ctx context.Context, assetID uuid.UUID) (GrantTerms, error)
	ResolveTx(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (GrantTerms, error)
}

type service struct {
	repo        GovernanceRepository
	defaultDays int
}

// NewService wires a grants service with the provided governance repository.
// defaultDays bounds the access window when governance metadata does not;
// non-positive values fall back to DefaultDurationDays.
func NewService(repo GovernanceRepository, defaultDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("governance repository required")
	}
	if defaultDays <= 0 {
		defaultDays = DefaultDurationDays
	}
	return &service{repo: repo, defaultDays: defaultDays}, nil
}

func (s *service) Resolve(ctx context.Context, assetID uuid.UUID) (GrantTerms, error) {
	return s.resolve(ctx, s.repo, assetID)
}

// ResolveTx resolves inside an open DB transaction so creation snapshots
// a consistent read.
func (s *service) ResolveTx(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (GrantTerms, error) {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	return s.resolve(ctx, repo, assetID)
}

func (s *service) resolve(ctx context.Context, repo GovernanceRepository, assetID uuid.UUID) (GrantTerms, error) {
	if assetID == uuid.Nil {
		return GrantTerms{}, fmt.Errorf("asset id is required")
	}

	terms := GrantTerms{
		AssetID:      assetID,
		DurationDays: s.defaultDays,
		Permissions:  types.TermList{},
		Prohibitions: types.TermList{},
		Obligations:  types.TermList{},
		Currency:     enums.CurrencyUSD,
	}

	gov, err := repo.FindByAssetID(ctx, assetID)
	if err != nil {
		return GrantTerms{}, err
	}
	if gov == nil {
		// no governance row yet, defaults apply
		return terms, nil
	}

	if gov.AccessTimeoutDays != nil && *gov.AccessTimeoutDays > 0 {
		terms.DurationDays = *gov.AccessTimeoutDays
	}
	terms.Permissions = append(types.TermList{}, gov.Permissions...)
	terms.Prohibitions = append(types.TermList{}, gov.Prohibitions...)
	terms.Obligations = append(types.TermList{}, gov.Obligations...)
	if gov.ExternalTermsURL != nil {
		url := *gov.ExternalTermsURL
		terms.ExternalTermsURL = &url
	}
	terms.PriceAmount = gov.PriceAmount
	if gov.Currency.IsValid() {
		terms.Currency = gov.Currency
	}

	return terms, nil
}
