package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/datalinea/dataspace-backend/pkg/enums"
	"github.com/datalinea/dataspace-backend/pkg/logger"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// GovernanceEventRow is the flattened governance record streamed to BigQuery.
type GovernanceEventRow struct {
	TransactionID string    `bigquery:"transaction_id"`
	AssetID       string    `bigquery:"asset_id"`
	Action        string    `bigquery:"action"`
	Status        string    `bigquery:"status"`
	ActorOrgID    string    `bigquery:"actor_org_id"`
	ActorUserID   string    `bigquery:"actor_user_id"`
	ActorRole     string    `bigquery:"actor_role"`
	Notes         string    `bigquery:"notes"`
	OccurredAt    time.Time `bigquery:"occurred_at"`
}

// GovernanceEvent is the domain-side input before flattening.
type GovernanceEvent struct {
	TransactionID uuid.UUID
	AssetID       uuid.UUID
	Action        enums.ApprovalAction
	Status        enums.TransactionStatus
	ActorOrgID    uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     enums.ActorRole
	Notes         string
	OccurredAt    time.Time
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

// Recorder streams governance events to BigQuery. The stream is strictly
// best-effort: Record never returns an error to the caller, because an
// audit outage must not block a request transition.
type Recorder struct {
	client tableInserter
	table  string
	retry  RetryPolicy
	logg   *logger.Logger
}

// NewRecorder builds a governance audit recorder for the given table.
func NewRecorder(client tableInserter, table string, retry RetryPolicy, logg *logger.Logger) (*Recorder, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("governance events table is required")
	}

	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &Recorder{
		client: client,
		table:  table,
		retry:  retry,
		logg:   logg,
	}, nil
}

// Record streams one governance event. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, event GovernanceEvent) {
	if r == nil || r.client == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	row := GovernanceEventRow{
		TransactionID: event.TransactionID.String(),
		AssetID:       event.AssetID.String(),
		Action:        event.Action.String(),
		Status:        event.Status.String(),
		ActorOrgID:    event.ActorOrgID.String(),
		ActorUserID:   event.ActorUserID.String(),
		ActorRole:     event.ActorRole.String(),
		Notes:         event.Notes,
		OccurredAt:    event.OccurredAt,
	}

	if err := r.insertWithRetry(ctx, row); err != nil && r.logg != nil {
		fields := map[string]any{
			"transaction_id": row.TransactionID,
			"action":         row.Action,
			"table":          r.table,
		}
		r.logg.Warn(r.logg.WithFields(ctx, fields), "governance audit insert dropped: "+err.Error())
	}
}

func (r *Recorder) insertWithRetry(ctx context.Context, row GovernanceEventRow) error {
	backoff := r.retry.InitialBackoff
	var errs error
	for attempt := 0; attempt < r.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return multierr.Append(errs, ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
			if backoff > r.retry.MaximumBackoff {
				backoff = r.retry.MaximumBackoff
			}
		}
		err := r.client.InsertRows(ctx, r.table, []any{row})
		if err == nil {
			return nil
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}
