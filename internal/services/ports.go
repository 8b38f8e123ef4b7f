package services

import (
	"context"

	"finlens/internal/core"
)

// EventPublisher notifies downstream consumers that a statement or ratio
// set was generated. Publishing is best-effort: the engine never fails an
// operation because an event could not be delivered.
type EventPublisher interface {
	PublishStatementGenerated(ctx context.Context, st core.StatementType, startDate, endDate string) error
	PublishRatiosComputed(ctx context.Context, asOfDate string) error
}
