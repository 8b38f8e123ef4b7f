package worker

import (
	"context"
	"fmt"
	"time"

	"finlens/internal/amqp"
	"finlens/internal/core"
	"finlens/internal/ledger"
	applog "finlens/internal/log"
	"finlens/internal/sheets"
)

// Store is the slice of persistence the export worker needs.
type Store interface {
	GetStatement(ctx context.Context, st core.StatementType, startDate, endDate string) (*ledger.StatementRecord, error)
	GetRatios(ctx context.Context, asOfDate string) (*ledger.RatioRecord, error)
	ListStatementsUpdatedSince(ctx context.Context, since time.Time, limit int) ([]ledger.StatementRecord, error)
}

// ExportWorker mirrors persisted statements and ratio sets to an external
// report. Events carry only natural keys; the worker always re-reads the
// payload from the database so exports never race a regeneration.
type ExportWorker struct {
	store      Store
	statements sheets.StatementExporter
	ratios     sheets.RatioExporter
	batchSize  int
	logger     *applog.Logger
}

func NewExportWorker(store Store, statements sheets.StatementExporter, ratios sheets.RatioExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:      store,
		statements: statements,
		ratios:     ratios,
		batchSize:  batchSize,
		logger:     applog.Default(applog.ComponentWorker),
	}
}

// HandleExportEvent processes a single export event. A missing record means
// the event is stale; it is logged and dropped rather than requeued.
func (w *ExportWorker) HandleExportEvent(ctx context.Context, event *amqp.ExportEvent) error {
	switch event.Kind {
	case amqp.KindStatementGenerated:
		return w.exportStatement(ctx, event)
	case amqp.KindRatiosComputed:
		return w.exportRatios(ctx, event)
	default:
		w.logger.WarnContext(ctx, "Dropping event of unknown kind", "kind", event.Kind, "event_id", event.ID)
		return nil
	}
}

func (w *ExportWorker) exportStatement(ctx context.Context, event *amqp.ExportEvent) error {
	rec, err := w.store.GetStatement(ctx, core.StatementType(event.StatementType), event.StartDate, event.EndDate)
	if err != nil {
		return fmt.Errorf("load statement: %w", err)
	}
	if rec == nil {
		w.logger.WarnContext(ctx, "Statement for event no longer exists, dropping",
			"statement_type", event.StatementType,
			"start_date", event.StartDate,
			"end_date", event.EndDate,
			"event_id", event.ID)
		return nil
	}

	ref, err := w.statements.ExportStatement(ctx, *rec)
	if err != nil {
		return fmt.Errorf("export statement: %w", err)
	}

	w.logger.InfoContext(ctx, "Exported statement",
		"statement_type", rec.Type,
		"end_date", rec.EndDate,
		"ref", ref)
	return nil
}

func (w *ExportWorker) exportRatios(ctx context.Context, event *amqp.ExportEvent) error {
	rec, err := w.store.GetRatios(ctx, event.AsOfDate)
	if err != nil {
		return fmt.Errorf("load ratios: %w", err)
	}
	if rec == nil {
		w.logger.WarnContext(ctx, "Ratios for event no longer exist, dropping",
			"as_of_date", event.AsOfDate,
			"event_id", event.ID)
		return nil
	}

	ref, err := w.ratios.ExportRatios(ctx, *rec)
	if err != nil {
		return fmt.Errorf("export ratios: %w", err)
	}

	w.logger.InfoContext(ctx, "Exported ratios", "as_of_date", rec.AsOfDate, "ref", ref)
	return nil
}

// CatchUp re-exports statements updated since the cutoff. This is the
// backup path for events lost while the worker was down.
func (w *ExportWorker) CatchUp(ctx context.Context, since time.Time) error {
	recs, err := w.store.ListStatementsUpdatedSince(ctx, since, w.batchSize)
	if err != nil {
		return fmt.Errorf("list recent statements: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Catching up recent statements", "count", len(recs))

	errorCount := 0
	for _, rec := range recs {
		if _, err := w.statements.ExportStatement(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export statement during catch-up",
				"statement_type", rec.Type,
				"end_date", rec.EndDate,
				"error", err)
			errorCount++
		}
	}
	if errorCount > 0 {
		return fmt.Errorf("catch-up finished with %d of %d exports failed", errorCount, len(recs))
	}
	return nil
}
