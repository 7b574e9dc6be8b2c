package assets

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/datalinea/dataspace-backend/api/middleware"
	"github.com/datalinea/dataspace-backend/api/responses"
	"github.com/datalinea/dataspace-backend/api/validators"
	"github.com/datalinea/dataspace-backend/internal/drafts"
	"github.com/datalinea/dataspace-backend/internal/grants"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/logger"
	"github.com/datalinea/dataspace-backend/pkg/types"
)

// TermsResponse previews the policy terms a consumer would accept by
// requesting access to the asset.
type TermsResponse struct {
	AssetID          uuid.UUID       `json:"asset_id"`
	DurationDays     int             `json:"duration_days"`
	Permissions      types.TermList  `json:"permissions"`
	Prohibitions     types.TermList  `json:"prohibitions"`
	Obligations      types.TermList  `json:"obligations"`
	ExternalTermsURL *string         `json:"external_terms_url,omitempty"`
	PriceAmount      decimal.Decimal `json:"price_amount"`
	Currency         enums.Currency  `json:"currency"`
}

// DraftRequest carries the wizard form state between sessions.
type DraftRequest struct {
	Purpose       string `json:"purpose" validate:"omitempty,max=500"`
	Justification string `json:"justification" validate:"omitempty,max=1000"`
	Step          int    `json:"step" validate:"omitempty,min=0,max=10"`
}

type DraftResponse struct {
	AssetID       uuid.UUID `json:"asset_id"`
	Purpose       string    `json:"purpose,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Step          int       `json:"step"`
	SavedAt       time.Time `json:"saved_at"`
}

// Terms resolves the governance terms for an asset.
func Terms(svc grants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := validators.ParseUUIDParam(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terms, err := svc.Resolve(r.Context(), assetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, TermsResponse{
			AssetID:          assetID,
			DurationDays:     terms.DurationDays,
			Permissions:      terms.Permissions,
			Prohibitions:     terms.Prohibitions,
			Obligations:      terms.Obligations,
			ExternalTermsURL: terms.ExternalTermsURL,
			PriceAmount:      terms.PriceAmount,
			Currency:         terms.Currency,
		})
	}
}

// DraftGet loads the caller's saved wizard draft for the asset, if any.
func DraftGet(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, assetID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Load(r.Context(), userID, assetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if draft == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no draft saved"))
			return
		}
		responses.WriteSuccess(w, toDraftResponse(draft))
	}
}

// DraftSave stores the wizard form state, replacing any prior draft.
func DraftSave(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, assetID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body DraftRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft := drafts.Draft{
			AssetID:       assetID,
			Purpose:       body.Purpose,
			Justification: body.Justification,
			Step:          body.Step,
		}
		if err := svc.Save(r.Context(), userID, draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

// DraftClear discards the caller's saved draft.
func DraftClear(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func draftScope(r *http.Request) (userID, assetID uuid.UUID, err error) {
	userID, err = uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	assetID, err = validators.ParseUUIDParam(r, "assetId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, assetID, nil
}

func toDraftResponse(draft *drafts.Draft) DraftResponse {
	return DraftResponse{
		AssetID:       draft.AssetID,
		Purpose:       draft.Purpose,
		Justification: draft.Justification,
		Step:          draft.Step,
		SavedAt:       draft.SavedAt,
	}
}
