package approvals

import (
	"context"
	"strings"
	"testing"

	"github.com/datalinea/dataspace-backend/pkg/db/models"
	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.ApprovalEntry) error
	listFn   func(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.ApprovalEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]models.ApprovalEntry, error) {
	if f.listFn != nil {
		return f.listFn(ctx, transactionID)
	}
	return nil, nil
}

func TestService_Append(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	input := AppendEntryInput{
		TransactionID: uuid.New(),
		ActorOrgID:    uuid.New(),
		ActorUserID:   uuid.New(),
		Action:        enums.ApprovalActionPreApprove,
		Notes:         "  reviewed under data sharing agreement 42  ",
	}

	var created *models.ApprovalEntry
	repo.createFn = func(ctx context.Context, entry *models.ApprovalEntry) error {
		created = entry
		return nil
	}

	got, err := svc.Append(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if created == nil {
		t.Fatal("expected ledger entry to be created")
	}
	if created.TransactionID != input.TransactionID || created.Action != input.Action {
		t.Fatalf("unexpected entry data: %+v", created)
	}
	if created.ActorOrgID != input.ActorOrgID || created.ActorUserID != input.ActorUserID {
		t.Fatalf("missing actor metadata: %+v", created)
	}
	if created.Notes == nil || *created.Notes != "reviewed under data sharing agreement 42" {
		t.Fatalf("notes should be trimmed, got %v", created.Notes)
	}
	if got != created {
		t.Fatal("service should return created entry")
	}
}

func TestService_AppendTruncatesLongNotes(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	var created *models.ApprovalEntry
	repo.createFn = func(ctx context.Context, entry *models.ApprovalEntry) error {
		created = entry
		return nil
	}

	_, err := svc.Append(context.Background(), nil, AppendEntryInput{
		TransactionID: uuid.New(),
		ActorOrgID:    uuid.New(),
		ActorUserID:   uuid.New(),
		Action:        enums.ApprovalActionDeny,
		Notes:         strings.Repeat("x", maxNotesLen+500),
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if created.Notes == nil || len(*created.Notes) != maxNotesLen {
		t.Fatalf("expected notes capped at %d chars", maxNotesLen)
	}
}

func TestService_AppendValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	base := AppendEntryInput{
		TransactionID: uuid.New(),
		ActorOrgID:    uuid.New(),
		ActorUserID:   uuid.New(),
		Action:        enums.ApprovalActionApprove,
	}

	tests := []struct {
		name   string
		mutate func(*AppendEntryInput)
	}{
		{name: "missing transaction", mutate: func(in *AppendEntryInput) { in.TransactionID = uuid.Nil }},
		{name: "missing actor org", mutate: func(in *AppendEntryInput) { in.ActorOrgID = uuid.Nil }},
		{name: "missing actor user", mutate: func(in *AppendEntryInput) { in.ActorUserID = uuid.Nil }},
		{name: "invalid action", mutate: func(in *AppendEntryInput) { in.Action = enums.ApprovalAction("shrug") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			if _, err := svc.Append(context.Background(), nil, input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestService_ListByTransactionPreservesOrder(t *testing.T) {
	txID := uuid.New()
	entries := []models.ApprovalEntry{
		{TransactionID: txID, Action: enums.ApprovalActionCreate},
		{TransactionID: txID, Action: enums.ApprovalActionPreApprove},
		{TransactionID: txID, Action: enums.ApprovalActionApprove},
	}
	repo := &fakeRepository{
		listFn: func(ctx context.Context, id uuid.UUID) ([]models.ApprovalEntry, error) {
			if id != txID {
				t.Fatalf("unexpected transaction id %s", id)
			}
			return entries, nil
		},
	}
	svc, _ := NewService(repo)

	got, err := svc.ListByTransaction(context.Background(), txID)
	if err != nil {
		t.Fatalf("ListByTransaction error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Action != enums.ApprovalActionCreate || got[2].Action != enums.ApprovalActionApprove {
		t.Fatalf("ledger order not preserved: %+v", got)
	}
}
