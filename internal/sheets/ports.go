package sheets

import (
	"context"

	"finlens/internal/ledger"
)

// Ports for outbound report exporters.
type (
	// StatementExporter appends persisted statements to an external report.
	StatementExporter interface {
		ExportStatement(ctx context.Context, rec ledger.StatementRecord) (rowRef string, err error)
	}

	// RatioExporter appends persisted ratio sets to an external report.
	RatioExporter interface {
		ExportRatios(ctx context.Context, rec ledger.RatioRecord) (rowRef string, err error)
	}
)
