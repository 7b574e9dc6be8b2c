package drafts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.ttls, key)
	}
	return nil
}

func (f *fakeStore) DraftKey(userID string) string {
	return "ds:draft:" + userID
}

func TestService_SaveAndLoad(t *testing.T) {
	store := newFakeStore()
	svc, err := NewService(store, time.Hour)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	userID := uuid.New()
	assetID := uuid.New()
	draft := Draft{
		AssetID:       assetID,
		Purpose:       "clinical-research",
		Justification: "phase 2 trial cohort",
		Step:          2,
	}

	if err := svc.Save(context.Background(), userID, draft); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if ttl := store.ttls[store.DraftKey(userID.String())]; ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	got, err := svc.Load(context.Background(), userID, assetID)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got == nil {
		t.Fatal("expected draft")
	}
	if got.Purpose != draft.Purpose || got.Step != 2 {
		t.Fatalf("draft fields lost: %+v", got)
	}
	if got.SavedAt.IsZero() {
		t.Fatal("SavedAt should be stamped on save")
	}
}

func TestService_SaveOverwritesPreviousDraft(t *testing.T) {
	store := newFakeStore()
	svc, _ := NewService(store, 0)

	userID := uuid.New()
	first := Draft{AssetID: uuid.New(), Purpose: "old"}
	second := Draft{AssetID: uuid.New(), Purpose: "new"}

	if err := svc.Save(context.Background(), userID, first); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := svc.Save(context.Background(), userID, second); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// loading for the first asset misses, loading for the second hits
	got, err := svc.Load(context.Background(), userID, first.AssetID)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatal("overwritten draft must not load")
	}

	got, err = svc.Load(context.Background(), userID, second.AssetID)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got == nil || got.Purpose != "new" {
		t.Fatalf("expected second draft, got %+v", got)
	}
}

func TestService_LoadMissingDraftIsNil(t *testing.T) {
	svc, _ := NewService(newFakeStore(), 0)
	got, err := svc.Load(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil draft")
	}
}

func TestService_LoadDropsCorruptPayload(t *testing.T) {
	store := newFakeStore()
	svc, _ := NewService(store, 0)

	userID := uuid.New()
	key := store.DraftKey(userID.String())
	store.values[key] = "{not json"

	got, err := svc.Load(context.Background(), userID, uuid.New())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatal("corrupt draft must not load")
	}
	if _, ok := store.values[key]; ok {
		t.Fatal("corrupt draft should be deleted")
	}
}

func TestService_Clear(t *testing.T) {
	store := newFakeStore()
	svc, _ := NewService(store, 0)

	userID := uuid.New()
	assetID := uuid.New()
	if err := svc.Save(context.Background(), userID, Draft{AssetID: assetID}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := svc.Clear(context.Background(), userID); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	got, err := svc.Load(context.Background(), userID, assetID)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatal("cleared draft must not load")
	}
}

func TestService_DefaultTTLApplied(t *testing.T) {
	store := newFakeStore()
	svc, _ := NewService(store, 0)

	userID := uuid.New()
	if err := svc.Save(context.Background(), userID, Draft{AssetID: uuid.New()}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if ttl := store.ttls[store.DraftKey(userID.String())]; ttl != DefaultTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTTL, ttl)
	}
}

func TestDraftJSONRoundTrip(t *testing.T) {
	draft := Draft{AssetID: uuid.New(), Purpose: "billing", SavedAt: time.Now().UTC().Truncate(time.Second)}
	raw, err := json.Marshal(draft)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Draft
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.AssetID != draft.AssetID || !decoded.SavedAt.Equal(draft.SavedAt) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}
