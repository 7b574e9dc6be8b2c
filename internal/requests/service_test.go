package requests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/datalinea/dataspace-backend/internal/approvals"
	"github.com/datalinea/dataspace-backend/internal/audit"
	"github.com/datalinea/dataspace-backend/internal/grants"
	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/types"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/outbox"
	"github.com/datalinea/dataspace-backend/pkg/pagination"
)

type fakeRequestsRepo struct {
	rows     map[uuid.UUID]*models.AccessTransaction
	policies []*models.PolicyDocument
	active   *models.AccessTransaction

	createErr     error
	activeErr     error
	casResult     bool
	casErr        error
	casCalls      int
	lastCASFrom   enums.TransactionStatus
	lastCASTo     enums.TransactionStatus
	lastCASExpiry *time.Time
	listRows      []models.AccessTransaction
}

func newFakeRequestsRepo() *fakeRequestsRepo {
	return &fakeRequestsRepo{rows: map[uuid.UUID]*models.AccessTransaction{}, casResult: true}
}

func (f *fakeRequestsRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRequestsRepo) Create(ctx context.Context, row *models.AccessTransaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	f.rows[row.ID] = row
	return nil
}

func (f *fakeRequestsRepo) CreatePolicy(ctx context.Context, doc *models.PolicyDocument) error {
	f.policies = append(f.policies, doc)
	return nil
}

func (f *fakeRequestsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error) {
	return f.rows[id], nil
}

func (f *fakeRequestsRepo) FindByIDWithPolicy(ctx context.Context, id uuid.UUID) (*models.AccessTransaction, error) {
	row := f.rows[id]
	if row != nil && row.Policy == nil && len(f.policies) > 0 {
		row.Policy = f.policies[0]
	}
	return row, nil
}

func (f *fakeRequestsRepo) FindActiveByAssetConsumer(ctx context.Context, assetID, consumerOrgID uuid.UUID, now time.Time) (*models.AccessTransaction, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}

func (f *fakeRequestsRepo) ListForOrg(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]models.AccessTransaction, error) {
	return f.listRows, nil
}

func (f *fakeRequestsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus, expiresAt *time.Time) (bool, error) {
	f.casCalls++
	f.lastCASFrom = from
	f.lastCASTo = to
	f.lastCASExpiry = expiresAt
	if f.casErr != nil {
		return false, f.casErr
	}
	if f.casResult {
		if row, ok := f.rows[id]; ok {
			row.Status = to
			row.SubscriptionExpiresAt = expiresAt
		}
	}
	return f.casResult, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeGrants struct {
	terms grants.GrantTerms
	err   error
}

func (f *fakeGrants) Resolve(ctx context.Context, assetID uuid.UUID) (grants.GrantTerms, error) {
	return f.terms, f.err
}

func (f *fakeGrants) ResolveTx(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (grants.GrantTerms, error) {
	return f.terms, f.err
}

type fakeApprovals struct {
	entries []approvals.AppendEntryInput
	listed  []models.ApprovalEntry
	err     error
}

func (f *fakeApprovals) Append(ctx context.Context, tx *gorm.DB, input approvals.AppendEntryInput) (*models.ApprovalEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.entries = append(f.entries, input)
	entry := &models.ApprovalEntry{
		ID:            uuid.New(),
		TransactionID: input.TransactionID,
		ActorOrgID:    input.ActorOrgID,
		ActorUserID:   input.ActorUserID,
		Action:        input.Action,
	}
	if input.Notes != "" {
		notes := input.Notes
		entry.Notes = &notes
	}
	return entry, nil
}

func (f *fakeApprovals) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error) {
	return f.listed, nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return f.Emit(ctx, tx, event)
}

type fakeAudit struct {
	events []audit.GovernanceEvent
}

func (f *fakeAudit) Record(ctx context.Context, event audit.GovernanceEvent) {
	f.events = append(f.events, event)
}

type testEnv struct {
	repo      *fakeRequestsRepo
	grants    *fakeGrants
	approvals *fakeApprovals
	outbox    *fakeOutbox
	audit     *fakeAudit
	now       time.Time
	svc       Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo: newFakeRequestsRepo(),
		grants: &fakeGrants{terms: grants.GrantTerms{
			DurationDays: 30,
			Permissions:  types.TermList{},
			Prohibitions: types.TermList{},
			Obligations:  types.TermList{},
			PriceAmount:  decimal.NewFromInt(250),
			Currency:     enums.CurrencyUSD,
		}},
		approvals: &fakeApprovals{},
		outbox:    &fakeOutbox{},
		audit:     &fakeAudit{},
		now:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		Repo:      env.repo,
		Tx:        fakeTxRunner{},
		Grants:    env.grants,
		Approvals: env.approvals,
		Outbox:    env.outbox,
		Audit:     env.audit,
		Now:       func() time.Time { return env.now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc
	return env
}

func validCreateInput() CreateInput {
	return CreateInput{
		AssetID:       uuid.New(),
		SubjectOrgID:  uuid.New(),
		HolderOrgID:   uuid.New(),
		Purpose:       "Quarterly risk model calibration",
		Justification: "We need this dataset to calibrate our credit risk models for Q2.",
		ActorOrgID:    uuid.New(),
		ActorUserID:   uuid.New(),
	}
}

func seedTransaction(env *testEnv, status enums.TransactionStatus) *models.AccessTransaction {
	row := &models.AccessTransaction{
		ID:                 uuid.New(),
		AssetID:            uuid.New(),
		ConsumerOrgID:      uuid.New(),
		SubjectOrgID:       uuid.New(),
		HolderOrgID:        uuid.New(),
		Purpose:            "Quarterly risk model calibration",
		Justification:      "We need this dataset to calibrate our credit risk models for Q2.",
		AccessDurationDays: 30,
		Status:             status,
	}
	env.repo.rows[row.ID] = row
	return row
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error with code %s, got %v", want, err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, appErr.Code())
	}
}

func TestCreateHappyPath(t *testing.T) {
	env := newTestEnv(t)
	input := validCreateInput()

	result, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.Redirected {
		t.Fatal("expected a new transaction, got redirect")
	}

	row := result.Transaction
	if row.Status != enums.TransactionStatusPendingSubject {
		t.Fatalf("expected pending_subject, got %s", row.Status)
	}
	if row.AccessDurationDays != 30 {
		t.Fatalf("expected duration snapshot 30, got %d", row.AccessDurationDays)
	}
	if row.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected payment pending for priced asset, got %s", row.PaymentStatus)
	}

	if len(env.repo.policies) != 1 {
		t.Fatalf("expected 1 policy document, got %d", len(env.repo.policies))
	}
	doc := env.repo.policies[0]
	if doc.AssignerOrgID != input.HolderOrgID || doc.AssigneeOrgID != input.ActorOrgID {
		t.Fatal("policy roles not derived from transaction parties")
	}

	if len(env.approvals.entries) != 1 || env.approvals.entries[0].Action != enums.ApprovalActionCreate {
		t.Fatalf("expected a single create ledger entry, got %+v", env.approvals.entries)
	}
	if len(env.outbox.events) != 1 || env.outbox.events[0].EventType != enums.EventRequestCreated {
		t.Fatalf("expected request.created event, got %+v", env.outbox.events)
	}
	if len(env.audit.events) != 1 {
		t.Fatalf("expected audit record, got %d", len(env.audit.events))
	}
}

func TestCreateFreeAssetSkipsPayment(t *testing.T) {
	env := newTestEnv(t)
	env.grants.terms.PriceAmount = decimal.Zero

	result, err := env.svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.Transaction.PaymentStatus != enums.PaymentStatusNA {
		t.Fatalf("expected payment na for free asset, got %s", result.Transaction.PaymentStatus)
	}
}

func TestCreateRedirectsToActiveTransaction(t *testing.T) {
	env := newTestEnv(t)
	existing := seedTransaction(env, enums.TransactionStatusPendingHolder)
	env.repo.active = existing

	result, err := env.svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !result.Redirected {
		t.Fatal("expected redirect to existing transaction")
	}
	if result.Transaction.ID != existing.ID {
		t.Fatal("redirect returned the wrong transaction")
	}
	if len(env.approvals.entries) != 0 || len(env.outbox.events) != 0 {
		t.Fatal("redirect must not write ledger entries or events")
	}
}

func TestCreateUniqueViolationFallsBackToConflict(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = errors.New(`duplicate key value violates unique constraint "ux_access_transactions_active_asset_consumer"`)

	_, err := env.svc.Create(context.Background(), validCreateInput())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		code   pkgerrors.Code
	}{
		{
			name:   "purpose too short",
			mutate: func(in *CreateInput) { in.Purpose = "short" },
			code:   pkgerrors.CodeValidation,
		},
		{
			name:   "justification too short",
			mutate: func(in *CreateInput) { in.Justification = "because" },
			code:   pkgerrors.CodeValidation,
		},
		{
			name:   "purpose over 500 characters",
			mutate: func(in *CreateInput) { in.Purpose = strings.Repeat("é", 501) },
			code:   pkgerrors.CodeValidation,
		},
		{
			name:   "missing asset",
			mutate: func(in *CreateInput) { in.AssetID = uuid.Nil },
			code:   pkgerrors.CodeValidation,
		},
		{
			name:   "consumer owns the asset",
			mutate: func(in *CreateInput) { in.ActorOrgID = in.HolderOrgID },
			code:   pkgerrors.CodeValidation,
		},
		{
			name:   "missing org context",
			mutate: func(in *CreateInput) { in.ActorOrgID = uuid.Nil },
			code:   pkgerrors.CodeForbidden,
		},
		{
			name:   "missing user identity",
			mutate: func(in *CreateInput) { in.ActorUserID = uuid.Nil },
			code:   pkgerrors.CodeUnauthorized,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := validCreateInput()
			tc.mutate(&input)
			_, err := env.svc.Create(context.Background(), input)
			assertCode(t, err, tc.code)
		})
	}
}

func TestCreateCountsCharactersNotBytes(t *testing.T) {
	env := newTestEnv(t)
	input := validCreateInput()
	// 500 runes but 1000 bytes; within bounds when measured in characters.
	input.Purpose = strings.Repeat("é", 500)

	if _, err := env.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create rejected a 500-character purpose: %v", err)
	}
}

func TestTransitionPreApprove(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingSubject)

	updated, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          row.ID,
		Action:      enums.ApprovalActionPreApprove,
		ActorOrgID:  row.SubjectOrgID,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != enums.TransactionStatusPendingHolder {
		t.Fatalf("expected pending_holder, got %s", updated.Status)
	}
	if env.repo.lastCASFrom != enums.TransactionStatusPendingSubject {
		t.Fatalf("status swap must be conditional on the source state, got %s", env.repo.lastCASFrom)
	}
	if env.repo.lastCASExpiry != nil {
		t.Fatal("pre-approval must not set an expiry")
	}
	if len(env.outbox.events) != 1 || env.outbox.events[0].EventType != enums.EventRequestPreApproved {
		t.Fatalf("expected request.pre_approved event, got %+v", env.outbox.events)
	}
}

func TestTransitionApproveSetsExpiry(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingHolder)

	updated, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          row.ID,
		Action:      enums.ApprovalActionApprove,
		ActorOrgID:  row.HolderOrgID,
		ActorUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != enums.TransactionStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	want := env.now.Add(30 * 24 * time.Hour)
	if updated.SubscriptionExpiresAt == nil || !updated.SubscriptionExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %v", want, updated.SubscriptionExpiresAt)
	}
	if env.outbox.events[0].EventType != enums.EventRequestCompleted {
		t.Fatalf("expected request.completed event, got %s", env.outbox.events[0].EventType)
	}
}

func TestTransitionDenyEachStage(t *testing.T) {
	tests := []struct {
		name   string
		status enums.TransactionStatus
		actor  func(*models.AccessTransaction) uuid.UUID
		want   enums.TransactionStatus
	}{
		{
			name:   "subject denies",
			status: enums.TransactionStatusPendingSubject,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.SubjectOrgID },
			want:   enums.TransactionStatusDeniedSubject,
		},
		{
			name:   "holder denies",
			status: enums.TransactionStatusPendingHolder,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.HolderOrgID },
			want:   enums.TransactionStatusDeniedHolder,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			row := seedTransaction(env, tc.status)

			updated, err := env.svc.Transition(context.Background(), TransitionInput{
				ID:          row.ID,
				Action:      enums.ApprovalActionDeny,
				ActorOrgID:  tc.actor(row),
				ActorUserID: uuid.New(),
				Notes:       "insufficient purpose",
			})
			if err != nil {
				t.Fatalf("Transition returned error: %v", err)
			}
			if updated.Status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, updated.Status)
			}
			if env.approvals.entries[0].Notes != "insufficient purpose" {
				t.Fatal("denial notes not recorded in the ledger")
			}
			if env.outbox.events[0].EventType != enums.EventRequestDenied {
				t.Fatalf("expected request.denied event, got %s", env.outbox.events[0].EventType)
			}
		})
	}
}

func TestTransitionRoleGuards(t *testing.T) {
	tests := []struct {
		name   string
		status enums.TransactionStatus
		action enums.ApprovalAction
		actor  func(*models.AccessTransaction) uuid.UUID
		code   pkgerrors.Code
	}{
		{
			name:   "outsider cannot act",
			status: enums.TransactionStatusPendingSubject,
			action: enums.ApprovalActionPreApprove,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return uuid.New() },
			code:   pkgerrors.CodeForbidden,
		},
		{
			name:   "consumer cannot pre-approve",
			status: enums.TransactionStatusPendingSubject,
			action: enums.ApprovalActionPreApprove,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.ConsumerOrgID },
			code:   pkgerrors.CodeForbidden,
		},
		{
			name:   "holder cannot deny before its stage",
			status: enums.TransactionStatusPendingSubject,
			action: enums.ApprovalActionDeny,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.HolderOrgID },
			code:   pkgerrors.CodeForbidden,
		},
		{
			name:   "approve out of order",
			status: enums.TransactionStatusPendingSubject,
			action: enums.ApprovalActionApprove,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.HolderOrgID },
			code:   pkgerrors.CodeStateConflict,
		},
		{
			name:   "pre-approve after completion",
			status: enums.TransactionStatusCompleted,
			action: enums.ApprovalActionPreApprove,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.SubjectOrgID },
			code:   pkgerrors.CodeStateConflict,
		},
		{
			name:   "deny after denial",
			status: enums.TransactionStatusDeniedSubject,
			action: enums.ApprovalActionDeny,
			actor:  func(r *models.AccessTransaction) uuid.UUID { return r.SubjectOrgID },
			code:   pkgerrors.CodeStateConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			row := seedTransaction(env, tc.status)

			_, err := env.svc.Transition(context.Background(), TransitionInput{
				ID:          row.ID,
				Action:      tc.action,
				ActorOrgID:  tc.actor(row),
				ActorUserID: uuid.New(),
			})
			assertCode(t, err, tc.code)
			if env.repo.casCalls != 0 {
				t.Fatal("guard failures must not reach the database")
			}
			if len(env.approvals.entries) != 0 || len(env.outbox.events) != 0 {
				t.Fatal("guard failures must not write ledger entries or events")
			}
		})
	}
}

func TestTransitionLostRaceReturnsConflict(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingSubject)
	env.repo.casResult = false

	_, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          row.ID,
		Action:      enums.ApprovalActionPreApprove,
		ActorOrgID:  row.SubjectOrgID,
		ActorUserID: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(env.outbox.events) != 0 {
		t.Fatal("a lost race must not emit events")
	}
}

func TestTransitionNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          uuid.New(),
		Action:      enums.ApprovalActionPreApprove,
		ActorOrgID:  uuid.New(),
		ActorUserID: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestTransitionCombinedSubjectHolderOrg(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingSubject)
	row.HolderOrgID = row.SubjectOrgID
	userID := uuid.New()

	if _, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          row.ID,
		Action:      enums.ApprovalActionPreApprove,
		ActorOrgID:  row.SubjectOrgID,
		ActorUserID: userID,
	}); err != nil {
		t.Fatalf("pre-approve as combined org: %v", err)
	}
	if _, err := env.svc.Transition(context.Background(), TransitionInput{
		ID:          row.ID,
		Action:      enums.ApprovalActionApprove,
		ActorOrgID:  row.SubjectOrgID,
		ActorUserID: userID,
	}); err != nil {
		t.Fatalf("approve as combined org: %v", err)
	}
	if row.Status != enums.TransactionStatusCompleted {
		t.Fatalf("expected completed, got %s", row.Status)
	}
}

func TestGetRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingSubject)

	detail, err := env.svc.Get(context.Background(), row.ID, row.SubjectOrgID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if detail.ActorRole != enums.ActorRoleSubject {
		t.Fatalf("expected subject role, got %s", detail.ActorRole)
	}

	_, err = env.svc.Get(context.Background(), row.ID, uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = env.svc.Get(context.Background(), uuid.New(), row.SubjectOrgID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestHistoryRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	row := seedTransaction(env, enums.TransactionStatusPendingSubject)
	env.approvals.listed = []models.ApprovalEntry{
		{TransactionID: row.ID, Action: enums.ApprovalActionCreate},
		{TransactionID: row.ID, Action: enums.ApprovalActionPreApprove},
	}

	entries, err := env.svc.History(context.Background(), row.ID, row.ConsumerOrgID)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	_, err = env.svc.History(context.Background(), row.ID, uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.AccessTransaction, 0, pagination.DefaultLimit+1)
	for i := 0; i < pagination.DefaultLimit+1; i++ {
		rows = append(rows, models.AccessTransaction{
			ID:        uuid.New(),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	env.repo.listRows = rows

	result, err := env.svc.List(context.Background(), ListInput{OrgID: orgID})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result.Transactions) != pagination.DefaultLimit {
		t.Fatalf("expected %d rows, got %d", pagination.DefaultLimit, len(result.Transactions))
	}
	if result.NextCursor == "" {
		t.Fatal("expected a next cursor when more rows exist")
	}
	cursor, err := pagination.ParseCursor(result.NextCursor)
	if err != nil {
		t.Fatalf("next cursor must round-trip: %v", err)
	}
	last := result.Transactions[len(result.Transactions)-1]
	if cursor.ID != last.ID {
		t.Fatal("next cursor must reference the last returned row")
	}

	env.repo.listRows = rows[:3]
	result, err = env.svc.List(context.Background(), ListInput{OrgID: orgID})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.NextCursor != "" {
		t.Fatal("expected no cursor on the final page")
	}
}
