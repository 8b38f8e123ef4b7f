package services

import (
	"context"
	"fmt"

	"finlens/internal/config"
	"finlens/internal/core"
)

// VarianceService compares a fixed metric list across two periods of the
// same statement type. Results are always recomputed on demand and never
// persisted.
type VarianceService struct {
	statements *StatementService
	cfg        config.Engine
}

func NewVarianceService(statements *StatementService, cfg config.Engine) *VarianceService {
	return &VarianceService{
		statements: statements,
		cfg:        cfg,
	}
}

// Analyze compares currentEnd against previousEnd. A nil previousEnd
// defaults to the same month and day one year earlier. Flow statements
// cover start-of-month through the end date; balance sheets compare two
// point-in-time snapshots.
func (s *VarianceService) Analyze(ctx context.Context, statementType core.StatementType, currentEnd core.Date, previousEnd *core.Date) (*core.VarianceReport, error) {
	prevEnd := currentEnd.DefaultComparisonPeriod()
	if previousEnd != nil {
		prevEnd = *previousEnd
	}

	report := &core.VarianceReport{
		StatementType: statementType,
		Currency:      s.cfg.Currency,
	}

	var current, previous []core.Metric

	switch statementType {
	case core.IncomeStatementType:
		currentStart := currentEnd.StartOfMonth()
		prevStart := prevEnd.StartOfMonth()

		cur, err := s.statements.IncomeStatement(ctx, currentStart, currentEnd)
		if err != nil {
			return nil, fmt.Errorf("current income statement: %w", err)
		}
		prev, err := s.statements.IncomeStatement(ctx, prevStart, prevEnd)
		if err != nil {
			return nil, fmt.Errorf("previous income statement: %w", err)
		}

		current, previous = cur.Metrics(), prev.Metrics()
		report.CurrentPeriod = core.PeriodBounds{StartDate: &currentStart, EndDate: currentEnd}
		report.PreviousPeriod = core.PeriodBounds{StartDate: &prevStart, EndDate: prevEnd}

	case core.BalanceSheetType:
		cur, err := s.statements.BalanceSheet(ctx, currentEnd)
		if err != nil {
			return nil, fmt.Errorf("current balance sheet: %w", err)
		}
		prev, err := s.statements.BalanceSheet(ctx, prevEnd)
		if err != nil {
			return nil, fmt.Errorf("previous balance sheet: %w", err)
		}

		current, previous = cur.Metrics(), prev.Metrics()
		report.CurrentPeriod = core.PeriodBounds{EndDate: currentEnd}
		report.PreviousPeriod = core.PeriodBounds{EndDate: prevEnd}

	case core.CashFlowType:
		currentStart := currentEnd.StartOfMonth()
		prevStart := prevEnd.StartOfMonth()

		cur, err := s.statements.CashFlow(ctx, currentStart, currentEnd)
		if err != nil {
			return nil, fmt.Errorf("current cash flow statement: %w", err)
		}
		prev, err := s.statements.CashFlow(ctx, prevStart, prevEnd)
		if err != nil {
			return nil, fmt.Errorf("previous cash flow statement: %w", err)
		}

		current, previous = cur.Metrics(), prev.Metrics()
		report.CurrentPeriod = core.PeriodBounds{StartDate: &currentStart, EndDate: currentEnd}
		report.PreviousPeriod = core.PeriodBounds{StartDate: &prevStart, EndDate: prevEnd}

	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidStatementType, statementType)
	}

	report.Variances = core.CompareMetrics(current, previous, s.cfg.Precision)
	return report, nil
}
