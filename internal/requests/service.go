package requests

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/datalinea/dataspace-backend/internal/approvals"
	"github.com/datalinea/dataspace-backend/internal/audit"
	"github.com/datalinea/dataspace-backend/internal/grants"
	"github.com/datalinea/dataspace-backend/internal/policy"
	dbpkg "github.com/datalinea/dataspace-backend/pkg/db"
	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/logger"
	"github.com/datalinea/dataspace-backend/pkg/metrics"
	"github.com/datalinea/dataspace-backend/pkg/outbox"
	"github.com/datalinea/dataspace-backend/pkg/outbox/payloads"
	"github.com/datalinea/dataspace-backend/pkg/pagination"
)

const (
	minPurposeLen       = 10
	maxPurposeLen       = 500
	minJustificationLen = 20
	maxJustificationLen = 1000

	activeUniqueIndex = "ux_access_transactions_active_asset_consumer"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.GovernanceEvent)
}

// Service is the authoritative workflow for access transactions.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Transition(ctx context.Context, input TransitionInput) (*models.AccessTransaction, error)
	Get(ctx context.Context, id, actorOrgID uuid.UUID) (*Detail, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	History(ctx context.Context, id, actorOrgID uuid.UUID) ([]models.ApprovalEntry, error)
}

// ServiceParams wires the state machine's collaborators.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Grants    grants.Service
	Approvals approvals.Service
	Outbox    outboxPublisher
	Audit     auditRecorder
	Metrics   *metrics.TransitionMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	grants    grants.Service
	approvals approvals.Service
	outbox    outboxPublisher
	audit     auditRecorder
	metrics   *metrics.TransitionMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the transaction state machine service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "requests repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Grants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "grants service required")
	}
	if params.Approvals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "approvals service required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox publisher required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		grants:    params.Grants,
		approvals: params.Approvals,
		outbox:    params.Outbox,
		audit:     params.Audit,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	// primary defense of the uniqueness invariant: redirect to the
	// existing active transaction instead of creating a duplicate
	existing, err := s.repo.FindActiveByAssetConsumer(ctx, input.AssetID, input.ActorOrgID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active transaction")
	}
	if existing != nil {
		return &CreateResult{Transaction: existing, Redirected: true}, nil
	}

	var created *models.AccessTransaction
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		terms, err := s.grants.ResolveTx(ctx, tx, input.AssetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve grant terms")
		}

		paymentStatus := enums.PaymentStatusNA
		if terms.PriceAmount.IsPositive() {
			paymentStatus = enums.PaymentStatusPending
		}

		row := &models.AccessTransaction{
			AssetID:            input.AssetID,
			ConsumerOrgID:      input.ActorOrgID,
			SubjectOrgID:       input.SubjectOrgID,
			HolderOrgID:        input.HolderOrgID,
			Purpose:            input.Purpose,
			Justification:      input.Justification,
			AccessDurationDays: terms.DurationDays,
			Status:             enums.TransactionStatusPendingSubject,
			PaymentStatus:      paymentStatus,
			PriceAmount:        terms.PriceAmount,
			Currency:           terms.Currency,
		}
		if err := txRepo.Create(ctx, row); err != nil {
			return err
		}

		doc, err := policy.Build(policy.BuildInput{
			TransactionID: row.ID,
			AssetID:       row.AssetID,
			HolderOrgID:   row.HolderOrgID,
			ConsumerOrgID: row.ConsumerOrgID,
			Purpose:       row.Purpose,
			Terms:         terms,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build policy document")
		}
		if err := txRepo.CreatePolicy(ctx, doc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist policy document")
		}
		row.Policy = doc

		if _, err := s.approvals.Append(ctx, tx, approvals.AppendEntryInput{
			TransactionID: row.ID,
			ActorOrgID:    input.ActorOrgID,
			ActorUserID:   input.ActorUserID,
			Action:        enums.ApprovalActionCreate,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateAccessTransaction,
			AggregateID:   row.ID,
			Actor:         actorRef(input.ActorUserID, input.ActorOrgID, enums.ActorRoleConsumer),
			Version:       1,
			Data: payloads.RequestCreatedEvent{
				TransactionID: row.ID,
				AssetID:       row.AssetID,
				ConsumerOrgID: row.ConsumerOrgID,
				SubjectOrgID:  row.SubjectOrgID,
				HolderOrgID:   row.HolderOrgID,
				Purpose:       row.Purpose,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit created event")
		}

		created = row
		return nil
	})
	if err != nil {
		// a concurrent create slipped past the query; the partial unique
		// index closed the window, surface the existing transaction
		if dbpkg.IsUniqueViolation(err, activeUniqueIndex) {
			existing, findErr := s.repo.FindActiveByAssetConsumer(ctx, input.AssetID, input.ActorOrgID, now)
			if findErr == nil && existing != nil {
				return &CreateResult{Transaction: existing, Redirected: true}, nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active request for this asset already exists")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"transaction_id": created.ID.String(),
			"asset_id":       created.AssetID.String(),
			"payment_status": created.PaymentStatus,
		})
		s.logg.Info(logCtx, "access request created")
	}

	s.recordAudit(ctx, created, enums.ApprovalActionCreate, enums.ActorRoleConsumer, input.ActorOrgID, input.ActorUserID, "")
	if s.metrics != nil {
		s.metrics.IncAccepted(enums.ApprovalActionCreate.String())
	}

	return &CreateResult{Transaction: created}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.AccessTransaction, error) {
	started := s.now()
	action := input.Action

	row, err := s.transition(ctx, input)
	if s.metrics != nil {
		s.metrics.ObserveDuration(action.String(), s.now().Sub(started))
		if err == nil {
			s.metrics.IncAccepted(action.String())
		} else if appErr := pkgerrors.As(err); appErr != nil {
			switch appErr.Code() {
			case pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
				s.metrics.IncConflict(action.String())
			case pkgerrors.CodeForbidden:
				s.metrics.IncRejected(action.String(), "role")
			default:
				s.metrics.IncRejected(action.String(), "other")
			}
		}
	}
	return row, err
}

func (s *service) transition(ctx context.Context, input TransitionInput) (*models.AccessTransaction, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	if len(transitionTable[input.Action]) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported action")
	}

	row, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}

	// role gate before the state check: never leak workflow position to
	// an org that could not perform this action in any state
	if !actorMayAttempt(row, input.ActorOrgID, input.Action) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	rule := ruleFor(input.Action, row.Status)
	if rule == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request was already processed")
	}
	if !HasRole(row, input.ActorOrgID, rule.role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	now := s.now().UTC()
	var expiresAt *time.Time
	if rule.to == enums.TransactionStatusCompleted {
		exp := expiresAtFor(now, row.AccessDurationDays)
		expiresAt = &exp
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		swapped, err := txRepo.UpdateStatus(ctx, row.ID, rule.from, rule.to, expiresAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeConflict, "request was already processed")
		}

		if _, err := s.approvals.Append(ctx, tx, approvals.AppendEntryInput{
			TransactionID: row.ID,
			ActorOrgID:    input.ActorOrgID,
			ActorUserID:   input.ActorUserID,
			Action:        input.Action,
			Notes:         input.Notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
		}

		// Each transition event fires at most once per transaction, so a
		// retried commit must not queue a duplicate.
		if err := s.outbox.EmitIfNotExists(ctx, tx, s.eventFor(row, rule, input, expiresAt)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit transition event")
		}
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transition")
	}

	row.Status = rule.to
	row.SubscriptionExpiresAt = expiresAt
	row.UpdatedAt = now

	if s.logg != nil {
		logCtx := s.logg.WithActorRole(ctx, rule.role.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"transaction_id": row.ID.String(),
			"action":         input.Action,
			"status":         row.Status,
		})
		s.logg.Info(logCtx, "transition applied")
	}

	s.recordAudit(ctx, row, input.Action, rule.role, input.ActorOrgID, input.ActorUserID, input.Notes)

	return row, nil
}

func (s *service) Get(ctx context.Context, id, actorOrgID uuid.UUID) (*Detail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	row, err := s.repo.FindByIDWithPolicy(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}

	role := ResolveRole(row, actorOrgID)
	if role == enums.ActorRoleNone {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	history, err := s.approvals.ListByTransaction(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load history")
	}

	return &Detail{
		Transaction: row,
		Policy:      row.Policy,
		History:     history,
		ActorRole:   role,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}

	cursor, err := pagination.ParseCursor(input.Pager.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pager.Limit)
	rows, err := s.repo.ListForOrg(ctx, input.OrgID, ListFilter{
		Status: input.Status,
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	result := &ListResult{Transactions: rows}
	if len(rows) > limit {
		result.Transactions = rows[:limit]
		last := result.Transactions[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) History(ctx context.Context, id, actorOrgID uuid.UUID) ([]models.ApprovalEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if ResolveRole(row, actorOrgID) == enums.ActorRoleNone {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	return s.approvals.ListByTransaction(ctx, id)
}

// actorMayAttempt reports whether the org holds any role that the action's
// transition rules name, regardless of current state.
func actorMayAttempt(row *models.AccessTransaction, orgID uuid.UUID, action enums.ApprovalAction) bool {
	for _, rule := range transitionTable[action] {
		if HasRole(row, orgID, rule.role) {
			return true
		}
	}
	return false
}

func (s *service) eventFor(row *models.AccessTransaction, rule *transitionRule, input TransitionInput, expiresAt *time.Time) outbox.DomainEvent {
	event := outbox.DomainEvent{
		AggregateType: enums.AggregateAccessTransaction,
		AggregateID:   row.ID,
		Actor:         actorRef(input.ActorUserID, input.ActorOrgID, rule.role),
		Version:       1,
	}
	switch rule.to {
	case enums.TransactionStatusPendingHolder:
		event.EventType = enums.EventRequestPreApproved
		event.Data = payloads.RequestPreApprovedEvent{
			TransactionID: row.ID,
			AssetID:       row.AssetID,
			ConsumerOrgID: row.ConsumerOrgID,
			HolderOrgID:   row.HolderOrgID,
		}
	case enums.TransactionStatusCompleted:
		event.EventType = enums.EventRequestCompleted
		event.Data = payloads.RequestCompletedEvent{
			TransactionID: row.ID,
			AssetID:       row.AssetID,
			ConsumerOrgID: row.ConsumerOrgID,
			HolderOrgID:   row.HolderOrgID,
			ExpiresAt:     expiresAt,
		}
	default:
		event.EventType = enums.EventRequestDenied
		event.Data = payloads.RequestDeniedEvent{
			TransactionID: row.ID,
			AssetID:       row.AssetID,
			ConsumerOrgID: row.ConsumerOrgID,
			DeniedByOrgID: input.ActorOrgID,
			ActorRole:     rule.role,
			Status:        rule.to,
			Notes:         strings.TrimSpace(input.Notes),
		}
	}
	return event
}

// recordAudit streams the governance side-channel after commit. Best
// effort only; the recorder swallows its own failures.
func (s *service) recordAudit(ctx context.Context, row *models.AccessTransaction, action enums.ApprovalAction, role enums.ActorRole, orgID, userID uuid.UUID, notes string) {
	if s.audit == nil || row == nil {
		return
	}
	s.audit.Record(ctx, audit.GovernanceEvent{
		TransactionID: row.ID,
		AssetID:       row.AssetID,
		Action:        action,
		Status:        row.Status,
		ActorOrgID:    orgID,
		ActorUserID:   userID,
		ActorRole:     role,
		Notes:         notes,
		OccurredAt:    s.now().UTC(),
	})
}

func actorRef(userID, orgID uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	org := orgID
	return &outbox.ActorRef{
		UserID: userID,
		OrgID:  &org,
		Role:   role.String(),
	}
}

func validateCreate(input *CreateInput) error {
	details := map[string]string{}

	if input.AssetID == uuid.Nil {
		details["asset_id"] = "asset is required"
	}
	if input.SubjectOrgID == uuid.Nil {
		details["subject_org_id"] = "subject organization is required"
	}
	if input.HolderOrgID == uuid.Nil {
		details["holder_org_id"] = "holder organization is required"
	}
	if input.ActorOrgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorOrgID == input.SubjectOrgID || input.ActorOrgID == input.HolderOrgID {
		details["asset_id"] = "cannot request access to your own asset"
	}

	// Bounds are in characters, matching the HTTP validator's rune semantics.
	input.Purpose = strings.TrimSpace(input.Purpose)
	if n := utf8.RuneCountInString(input.Purpose); n < minPurposeLen || n > maxPurposeLen {
		details["purpose"] = "purpose must be between 10 and 500 characters"
	}
	input.Justification = strings.TrimSpace(input.Justification)
	if n := utf8.RuneCountInString(input.Justification); n < minJustificationLen || n > maxJustificationLen {
		details["justification"] = "justification must be between 20 and 1000 characters"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid request").WithDetails(details)
	}
	return nil
}
