package services

import (
	"context"
	"math"
	"strings"
	"testing"

	"finlens/internal/core"
	"finlens/internal/ledger/memory"
)

// seedRatioLedger loads the balanced book used across the ratio tests:
// 50000 assets, 20000 liabilities, 30000 equity, with 10000 of January
// sales against 4000 of cost of goods.
func seedRatioLedger(store *memory.Store) {
	store.Post("Cash", core.Asset, core.NewDate(2024, 1, 1), dec("50000"))
	store.Post("Loan", core.Liability, core.NewDate(2024, 1, 1), dec("20000"))
	store.Post("Share Capital", core.Equity, core.NewDate(2024, 1, 1), dec("30000"))
	store.Post("Sales", core.Revenue, core.NewDate(2024, 1, 15), dec("10000"))
	store.Post("COGS", core.Expense, core.NewDate(2024, 1, 20), dec("4000"))
}

func TestComputeRatios(t *testing.T) {
	store := memory.New()
	seedRatioLedger(store)

	cfg := testEngineConfig()
	cfg.Precision = 3
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewRatioService(statements, store, nil, cfg)

	set, err := svc.Compute(context.Background(), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	tests := []struct {
		name string
		got  core.Ratio
		want core.Ratio
	}{
		{"current_ratio", set.Liquidity.CurrentRatio, 2.5},
		{"quick_ratio", set.Liquidity.QuickRatio, 2.5},
		{"profit_margin", set.Profitability.ProfitMargin, 0.6},
		{"return_on_assets", set.Profitability.ReturnOnAssets, 0.12},
		{"return_on_equity", set.Profitability.ReturnOnEquity, 0.2},
		{"debt_ratio", set.Leverage.DebtRatio, 0.4},
		{"debt_to_equity", set.Leverage.DebtToEquity, 0.667},
		{"asset_turnover", set.Efficiency.AssetTurnover, 0.2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	// no inventory on the books and no interest expense
	if !math.IsInf(float64(set.Efficiency.InventoryTurnover), 1) {
		t.Errorf("inventory_turnover: got %v, want +Inf", set.Efficiency.InventoryTurnover)
	}
	if !math.IsInf(float64(set.Leverage.InterestCoverage), 1) {
		t.Errorf("interest_coverage: got %v, want +Inf", set.Leverage.InterestCoverage)
	}
}

func TestComputeRatiosWithInventoryAndInterest(t *testing.T) {
	store := memory.New()
	seedRatioLedger(store)
	store.Post("Inventory", core.Asset, core.NewDate(2024, 1, 1), dec("10000"))
	store.Post("Interest Expense", core.Expense, core.NewDate(2024, 1, 25), dec("500"))

	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewRatioService(statements, store, nil, cfg)

	set, err := svc.Compute(context.Background(), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// quick ratio strips the designated inventory line: (60000-10000)/20000
	if set.Liquidity.QuickRatio != 2.5 {
		t.Errorf("quick_ratio: got %v, want 2.5", set.Liquidity.QuickRatio)
	}
	// cogs / inventory = 4000 / 10000
	if set.Efficiency.InventoryTurnover != 0.4 {
		t.Errorf("inventory_turnover: got %v, want 0.4", set.Efficiency.InventoryTurnover)
	}
	// operating income adds interest back to net income: (5500+500)/500 = 12
	if set.Leverage.InterestCoverage != 12 {
		t.Errorf("interest_coverage: got %v, want 12", set.Leverage.InterestCoverage)
	}
}

func TestComputeRatiosPersistsAndPublishes(t *testing.T) {
	store := memory.New()
	seedRatioLedger(store)

	cfg := testEngineConfig()
	pub := &capturingPublisher{}
	statements := NewStatementService(store, store, pub, cfg)
	svc := NewRatioService(statements, store, pub, cfg)

	ctx := context.Background()
	if _, err := svc.Compute(ctx, core.NewDate(2024, 1, 31)); err != nil {
		t.Fatalf("compute: %v", err)
	}

	rec, err := store.GetRatios(ctx, "2024-01-31")
	if err != nil {
		t.Fatalf("get ratios: %v", err)
	}
	if rec == nil {
		t.Fatalf("ratios were not persisted")
	}
	// infinities must survive the stored encoding
	if !strings.Contains(string(rec.Data), `"+Inf"`) {
		t.Errorf("stored payload lacks infinity sentinel: %s", rec.Data)
	}

	if len(pub.ratioDates) != 1 || pub.ratioDates[0] != "2024-01-31" {
		t.Errorf("expected one ratio event, got %v", pub.ratioDates)
	}
	// the underlying statements are persisted as a side effect
	if store.StatementCount() != 2 {
		t.Errorf("expected balance sheet and income statement rows, got %d", store.StatementCount())
	}
}

func TestComputeRatiosEmptyLedger(t *testing.T) {
	store := memory.New()
	cfg := testEngineConfig()
	statements := NewStatementService(store, store, nil, cfg)
	svc := NewRatioService(statements, store, nil, cfg)

	set, err := svc.Compute(context.Background(), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("an empty ledger must not error: %v", err)
	}
	// every denominator is zero
	if !math.IsInf(float64(set.Liquidity.CurrentRatio), 1) {
		t.Errorf("current_ratio: got %v, want +Inf", set.Liquidity.CurrentRatio)
	}
	if !math.IsInf(float64(set.Leverage.DebtToEquity), 1) {
		t.Errorf("debt_to_equity: got %v, want +Inf", set.Leverage.DebtToEquity)
	}
}
