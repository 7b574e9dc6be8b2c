package requests

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/datalinea/dataspace-backend/api/middleware"
	"github.com/datalinea/dataspace-backend/api/responses"
	"github.com/datalinea/dataspace-backend/api/validators"
	"github.com/datalinea/dataspace-backend/internal/drafts"
	internalrequests "github.com/datalinea/dataspace-backend/internal/requests"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/logger"
	"github.com/datalinea/dataspace-backend/pkg/pagination"
)

// Create opens a new access transaction, or redirects to the active one
// for the same asset and consumer. On a fresh creation the caller's
// wizard draft is cleared; on redirect it is left alone.
func Create(svc internalrequests.Service, draftsSvc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := parseBodyUUID(body.AssetID, "asset_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subjectOrgID, err := parseBodyUUID(body.SubjectOrgID, "subject_org_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		holderOrgID, err := parseBodyUUID(body.HolderOrgID, "holder_org_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), internalrequests.CreateInput{
			AssetID:       assetID,
			SubjectOrgID:  subjectOrgID,
			HolderOrgID:   holderOrgID,
			Purpose:       body.Purpose,
			Justification: body.Justification,
			ActorOrgID:    orgID,
			ActorUserID:   userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !result.Redirected && draftsSvc != nil {
			if err := draftsSvc.Clear(r.Context(), userID); err != nil && logg != nil {
				logg.Warn(r.Context(), "draft clear after create failed: "+err.Error())
			}
		}

		status := http.StatusCreated
		if result.Redirected {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, CreateResponse{
			Transaction: toTransactionResponse(result.Transaction),
			Redirected:  result.Redirected,
		})
	}
}

// List pages the transactions visible to the caller's organization.
func List(svc internalrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		var status *enums.TransactionStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed := enums.TransactionStatus(raw)
			if !parsed.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter"))
				return
			}
			status = &parsed
		}

		result, err := svc.List(r.Context(), internalrequests.ListInput{
			OrgID:  orgID,
			Status: status,
			Pager:  pagination.Params{Limit: limit, Cursor: cursor},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toListResponse(result))
	}
}

// Detail returns a transaction with its policy, ledger, and the caller's role.
func Detail(svc internalrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDetailResponse(detail))
	}
}

// Transition applies an approval decision to a pending transaction.
func Transition(svc internalrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body TransitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Transition(r.Context(), internalrequests.TransitionInput{
			ID:          id,
			Action:      enums.ApprovalAction(body.Action),
			ActorOrgID:  orgID,
			ActorUserID: userID,
			Notes:       strings.TrimSpace(body.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(row))
	}
}

// History returns the append-only approval ledger for a transaction.
func History(svc internalrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.History(r.Context(), id, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toHistoryResponse(entries))
	}
}

func actorFromContext(r *http.Request) (userID, orgID uuid.UUID, err error) {
	userID, err = uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orgID, err = uuid.Parse(middleware.OrgIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	return userID, orgID, nil
}

func parseBodyUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "field must be a uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
