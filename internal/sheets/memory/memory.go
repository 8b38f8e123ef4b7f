// Package memory provides an in-process exporter used by the memory
// backend and by worker tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finlens/internal/ledger"
)

type Exporter struct {
	mu         sync.Mutex
	statements []ledger.StatementRecord
	ratios     []ledger.RatioRecord
}

func New() *Exporter {
	return &Exporter{}
}

// ExportStatement stores the record and returns a synthetic row reference.
func (e *Exporter) ExportStatement(_ context.Context, rec ledger.StatementRecord) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statements = append(e.statements, rec)
	return fmt.Sprintf("mem:%d", len(e.statements)+len(e.ratios)), nil
}

// ExportRatios stores the record and returns a synthetic row reference.
func (e *Exporter) ExportRatios(_ context.Context, rec ledger.RatioRecord) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ratios = append(e.ratios, rec)
	return fmt.Sprintf("mem:%d", len(e.statements)+len(e.ratios)), nil
}

// Statements returns a copy of the exported statement records.
func (e *Exporter) Statements() []ledger.StatementRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ledger.StatementRecord(nil), e.statements...)
}

// Ratios returns a copy of the exported ratio records.
func (e *Exporter) Ratios() []ledger.RatioRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ledger.RatioRecord(nil), e.ratios...)
}
