package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/redis"
)

// DefaultTTL keeps an abandoned draft around for a week before Redis drops it.
const DefaultTTL = 7 * 24 * time.Hour

// Draft is the single in-progress request form a user can keep per session.
type Draft struct {
	AssetID       uuid.UUID `json:"asset_id"`
	Purpose       string    `json:"purpose,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Step          int       `json:"step,omitempty"`
	SavedAt       time.Time `json:"saved_at"`
}

// Store is the slice of the Redis client the draft service needs.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DraftKey(userID string) string
}

// Service persists one draft per user. Saving overwrites whatever was
// there before; loading for a different asset discards the stale draft.
type Service interface {
	Save(ctx context.Context, userID uuid.UUID, draft Draft) error
	Load(ctx context.Context, userID, assetID uuid.UUID) (*Draft, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store Store
	ttl   time.Duration
}

// NewService wires a draft service with the provided store and TTL.
func NewService(store Store, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{store: store, ttl: ttl}, nil
}

func (s *service) Save(ctx context.Context, userID uuid.UUID, draft Draft) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if draft.AssetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}
	if draft.SavedAt.IsZero() {
		draft.SavedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding draft")
	}
	if err := s.store.Set(ctx, s.store.DraftKey(userID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving draft")
	}
	return nil
}

func (s *service) Load(ctx context.Context, userID, assetID uuid.UUID) (*Draft, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if assetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}

	key := s.store.DraftKey(userID.String())
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		// corrupt payloads are unrecoverable, drop them
		_ = s.store.Del(ctx, key)
		return nil, nil
	}

	if draft.AssetID != assetID {
		return nil, nil
	}
	return &draft, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.store.Del(ctx, s.store.DraftKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing draft")
	}
	return nil
}
