package core

import (
	"github.com/shopspring/decimal"
)

type (
	// Metric is a labelled statement figure selected for comparison.
	Metric struct {
		Label string
		Value decimal.Decimal
	}

	// MetricVariance compares one metric across two periods.
	MetricVariance struct {
		Metric           string          `json:"metric"`
		CurrentValue     decimal.Decimal `json:"current_value"`
		PreviousValue    decimal.Decimal `json:"previous_value"`
		AbsoluteChange   decimal.Decimal `json:"absolute_change"`
		PercentageChange Ratio           `json:"percentage_change"`
	}

	// PeriodBounds describes one compared period. StartDate is nil for
	// point-in-time statements.
	PeriodBounds struct {
		StartDate *Date `json:"start_date"`
		EndDate   Date  `json:"end_date"`
	}

	// VarianceReport is the result of a period-over-period comparison.
	// It is always recomputed on demand and never persisted.
	VarianceReport struct {
		StatementType  StatementType    `json:"statement_type"`
		Currency       string           `json:"currency"`
		CurrentPeriod  PeriodBounds     `json:"current_period"`
		PreviousPeriod PeriodBounds     `json:"previous_period"`
		Variances      []MetricVariance `json:"variances"`
	}
)

// Metrics lists the income statement figures used in variance analysis.
func (s *IncomeStatement) Metrics() []Metric {
	return []Metric{
		{Label: "Revenue", Value: s.Revenue.Total},
		{Label: "Expenses", Value: s.Expenses.Total},
		{Label: "Gross Profit", Value: s.GrossProfit},
		{Label: "Net Income", Value: s.NetIncome},
	}
}

// Metrics lists the balance sheet figures used in variance analysis.
func (s *BalanceSheet) Metrics() []Metric {
	return []Metric{
		{Label: "Total Assets", Value: s.Assets.Total},
		{Label: "Total Liabilities", Value: s.Liabilities.Total},
		{Label: "Total Equity", Value: s.Equity.Total},
	}
}

// Metrics lists the cash-flow figures used in variance analysis.
func (s *CashFlowStatement) Metrics() []Metric {
	return []Metric{
		{Label: "Operating Activities", Value: s.OperatingActivities.NetCash},
		{Label: "Investing Activities", Value: s.InvestingActivities.NetCash},
		{Label: "Financing Activities", Value: s.FinancingActivities.NetCash},
		{Label: "Net Change in Cash", Value: s.NetChangeInCash},
	}
}

// CompareMetrics pairs current and previous metrics by position and computes
// absolute and percentage change for each. Both slices come from the same
// Metrics method, so labels always line up.
func CompareMetrics(current, previous []Metric, precision int) []MetricVariance {
	out := make([]MetricVariance, 0, len(current))
	for i, cur := range current {
		prev := previous[i]
		out = append(out, MetricVariance{
			Metric:           cur.Label,
			CurrentValue:     cur.Value,
			PreviousValue:    prev.Value,
			AbsoluteChange:   cur.Value.Sub(prev.Value),
			PercentageChange: PercentChange(prev.Value, cur.Value).Round(precision),
		})
	}
	return out
}
