package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"finlens/internal/core"
	"finlens/internal/ledger/memory"
)

func varianceFor(t *testing.T, report *core.VarianceReport, label string) core.MetricVariance {
	t.Helper()
	for _, v := range report.Variances {
		if v.Metric == label {
			return v
		}
	}
	t.Fatalf("metric %q missing from report: %+v", label, report.Variances)
	return core.MetricVariance{}
}

func TestAnalyzeIncomeStatementYearOverYear(t *testing.T) {
	store := memory.New()
	store.Post("Sales", core.Revenue, core.NewDate(2023, 1, 15), dec("10000"))
	store.Post("Sales", core.Revenue, core.NewDate(2024, 1, 15), dec("12000"))

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	// nil previous end defaults to one year earlier
	report, err := svc.Analyze(context.Background(), core.IncomeStatementType, core.NewDate(2024, 1, 31), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if report.StatementType != core.IncomeStatementType {
		t.Fatalf("statement type: got %q", report.StatementType)
	}
	if report.CurrentPeriod.StartDate == nil || report.CurrentPeriod.StartDate.String() != "2024-01-01" {
		t.Fatalf("current start: got %v", report.CurrentPeriod.StartDate)
	}
	if report.PreviousPeriod.EndDate.String() != "2023-01-31" {
		t.Fatalf("previous end: got %s", report.PreviousPeriod.EndDate)
	}

	rev := varianceFor(t, report, "Revenue")
	if !rev.CurrentValue.Equal(dec("12000")) || !rev.PreviousValue.Equal(dec("10000")) {
		t.Fatalf("revenue values: got %+v", rev)
	}
	if !rev.AbsoluteChange.Equal(dec("2000")) {
		t.Fatalf("revenue absolute change: got %s", rev.AbsoluteChange)
	}
	if rev.PercentageChange != 20 {
		t.Fatalf("revenue percentage change: got %v", rev.PercentageChange)
	}

	// both periods had no expenses: 0 -> 0 is a 0% change, not an error
	exp := varianceFor(t, report, "Expenses")
	if exp.PercentageChange != 0 {
		t.Fatalf("expenses percentage change: got %v", exp.PercentageChange)
	}
}

func TestAnalyzeExplicitComparisonPeriod(t *testing.T) {
	store := memory.New()
	store.Post("Sales", core.Revenue, core.NewDate(2024, 2, 10), dec("15000"))
	store.Post("Sales", core.Revenue, core.NewDate(2024, 1, 15), dec("12000"))

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	prevEnd := core.NewDate(2024, 1, 31)
	report, err := svc.Analyze(context.Background(), core.IncomeStatementType, core.NewDate(2024, 2, 29), &prevEnd)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	rev := varianceFor(t, report, "Revenue")
	if !rev.AbsoluteChange.Equal(dec("3000")) {
		t.Fatalf("absolute change: got %s", rev.AbsoluteChange)
	}
	if rev.PercentageChange != 25 {
		t.Fatalf("percentage change: got %v", rev.PercentageChange)
	}
}

func TestAnalyzeZeroPreviousYieldsInfinity(t *testing.T) {
	store := memory.New()
	store.Post("Sales", core.Revenue, core.NewDate(2024, 1, 15), dec("5000"))
	store.Post("Rent", core.Expense, core.NewDate(2023, 1, 10), dec("1000"))

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	report, err := svc.Analyze(context.Background(), core.IncomeStatementType, core.NewDate(2024, 1, 31), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// revenue appeared from nothing
	rev := varianceFor(t, report, "Revenue")
	if !math.IsInf(float64(rev.PercentageChange), 1) {
		t.Fatalf("revenue percentage change: got %v, want +Inf", rev.PercentageChange)
	}
	// net income went from -1000 to 5000
	ni := varianceFor(t, report, "Net Income")
	if !ni.AbsoluteChange.Equal(dec("6000")) {
		t.Fatalf("net income absolute change: got %s", ni.AbsoluteChange)
	}
	if ni.PercentageChange != 600 {
		t.Fatalf("net income percentage change: got %v", ni.PercentageChange)
	}
}

func TestAnalyzeBalanceSheet(t *testing.T) {
	store := memory.New()
	store.Post("Cash", core.Asset, core.NewDate(2023, 6, 1), dec("40000"))
	store.Post("Cash", core.Asset, core.NewDate(2024, 3, 1), dec("10000"))

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	report, err := svc.Analyze(context.Background(), core.BalanceSheetType, core.NewDate(2024, 6, 30), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// point-in-time snapshots carry no start date
	if report.CurrentPeriod.StartDate != nil || report.PreviousPeriod.StartDate != nil {
		t.Fatalf("balance sheet periods must have nil start dates: %+v", report)
	}

	assets := varianceFor(t, report, "Total Assets")
	if !assets.CurrentValue.Equal(dec("50000")) || !assets.PreviousValue.Equal(dec("40000")) {
		t.Fatalf("asset values: got %+v", assets)
	}
	if assets.PercentageChange != 25 {
		t.Fatalf("asset percentage change: got %v", assets.PercentageChange)
	}
}

func TestAnalyzeCashFlow(t *testing.T) {
	store := memory.New()
	store.PostCashFlow("Cash", core.Asset, core.NewDate(2023, 1, 10), dec("1000"), core.Operating, "Customer receipts")
	store.PostCashFlow("Cash", core.Asset, core.NewDate(2024, 1, 10), dec("1500"), core.Operating, "Customer receipts")

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	report, err := svc.Analyze(context.Background(), core.CashFlowType, core.NewDate(2024, 1, 31), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	op := varianceFor(t, report, "Operating Activities")
	if !op.AbsoluteChange.Equal(dec("500")) {
		t.Fatalf("operating absolute change: got %s", op.AbsoluteChange)
	}
	if op.PercentageChange != 50 {
		t.Fatalf("operating percentage change: got %v", op.PercentageChange)
	}
}

func TestAnalyzeFebruaryLeapYearDefault(t *testing.T) {
	store := memory.New()
	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	// Feb 29 has no counterpart a year earlier; the default normalizes forward
	report, err := svc.Analyze(context.Background(), core.IncomeStatementType, core.NewDate(2024, 2, 29), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.PreviousPeriod.EndDate.String() != "2023-03-01" {
		t.Fatalf("previous end: got %s", report.PreviousPeriod.EndDate)
	}
}

func TestAnalyzeRejectsUnknownStatementType(t *testing.T) {
	store := memory.New()
	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewVarianceService(statements, cfg)

	_, err := svc.Analyze(context.Background(), core.StatementType("budget"), core.NewDate(2024, 1, 31), nil)
	if !errors.Is(err, core.ErrInvalidStatementType) {
		t.Fatalf("expected ErrInvalidStatementType, got %v", err)
	}
}
