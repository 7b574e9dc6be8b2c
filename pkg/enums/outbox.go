package enums

// OutboxEventType identifies the domain event stored in the outbox.
type OutboxEventType string

const (
	EventRequestCreated     OutboxEventType = "request.created"
	EventRequestPreApproved OutboxEventType = "request.pre_approved"
	EventRequestCompleted   OutboxEventType = "request.completed"
	EventRequestDenied      OutboxEventType = "request.denied"
)

// OutboxAggregateType identifies the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateAccessTransaction OutboxAggregateType = "access_transaction"
)

// OutboxDLQErrorReason classifies terminal publish failures.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)
