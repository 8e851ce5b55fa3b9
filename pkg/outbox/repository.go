package outbox

import "context"

// Repository persists outbox events alongside the aggregates that emit them.
// Writes happen inside the aggregate's transaction; the publisher drains the
// store through the find/mark/retry methods.
type Repository interface {
	// SaveAll stores the events emitted by one aggregate mutation
	SaveAll(ctx context.Context, events []*OutboxEvent) error

	// FindUnpublished retrieves unpublished events up to the specified limit
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkPublished marks an event as published
	MarkPublished(ctx context.Context, eventID string) error

	// IncrementRetry increments the retry count and records the last error
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error

	// FindByAggregateID retrieves all events for a specific aggregate in
	// creation order
	FindByAggregateID(ctx context.Context, aggregateID string) ([]*OutboxEvent, error)
}
