package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/ledger"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finlens.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustPost(t *testing.T, repo *SQLiteRepository, name string, accountType core.AccountType, date core.Date, amount string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := repo.CreateAccount(ctx, name, accountType)
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount %s: %v", amount, err)
	}
	txID, err := repo.PostTransaction(ctx, id, date, d)
	if err != nil {
		t.Fatalf("post transaction: %v", err)
	}
	return txID
}

func TestAccountBalances(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	mustPost(t, repo, "Sales", core.Revenue, core.NewDate(2024, 1, 10), "6000")
	mustPost(t, repo, "Sales", core.Revenue, core.NewDate(2024, 1, 20), "4000")
	mustPost(t, repo, "Consulting", core.Revenue, core.NewDate(2024, 1, 5), "1234.56")
	// wrong type and out of window, both excluded
	mustPost(t, repo, "Rent", core.Expense, core.NewDate(2024, 1, 5), "1000")
	mustPost(t, repo, "Sales", core.Revenue, core.NewDate(2024, 2, 1), "500")

	start := core.NewDate(2024, 1, 1)
	end := core.NewDate(2024, 1, 31)
	balances, err := repo.AccountBalances(ctx, core.Revenue, &start, &end)
	if err != nil {
		t.Fatalf("account balances: %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d: %+v", len(balances), balances)
	}
	// alphabetical order
	if balances[0].Account != "Consulting" || !balances[0].Balance.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("first balance: got %+v", balances[0])
	}
	if balances[1].Account != "Sales" || !balances[1].Balance.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("second balance: got %+v", balances[1])
	}
}

func TestAccountBalancesUnbounded(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	mustPost(t, repo, "Cash", core.Asset, core.NewDate(2023, 6, 1), "100")
	mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 6, 1), "50")

	// nil start means from the beginning of the ledger
	end := core.NewDate(2024, 12, 31)
	balances, err := repo.AccountBalances(ctx, core.Asset, nil, &end)
	if err != nil {
		t.Fatalf("account balances: %v", err)
	}
	if len(balances) != 1 || !balances[0].Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("got %+v", balances)
	}
}

func TestCashFlowLines(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	txA := mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 1, 5), "8000")
	txB := mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 1, 12), "-3000")
	txC := mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 1, 20), "-2000")

	if err := repo.TagCashFlow(ctx, txA, core.Operating, "Customer receipts"); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if err := repo.TagCashFlow(ctx, txB, core.Operating, "Supplier payments"); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if err := repo.TagCashFlow(ctx, txC, core.Investing, "Equipment purchase"); err != nil {
		t.Fatalf("tag: %v", err)
	}

	lines, err := repo.CashFlowLines(ctx, core.Operating, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("cash flow lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 operating lines, got %+v", lines)
	}
	if lines[0].Description != "Customer receipts" || !lines[0].Amount.Equal(decimal.RequireFromString("8000")) {
		t.Fatalf("first line: got %+v", lines[0])
	}
	if lines[1].Description != "Supplier payments" || !lines[1].Amount.Equal(decimal.RequireFromString("-3000")) {
		t.Fatalf("second line: got %+v", lines[1])
	}

	// untagged activities are simply empty
	financing, err := repo.CashFlowLines(ctx, core.Financing, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("cash flow lines: %v", err)
	}
	if len(financing) != 0 {
		t.Fatalf("expected no financing lines, got %+v", financing)
	}
}

func TestTagCashFlowRejectsInvalidActivity(t *testing.T) {
	repo := newTestRepository(t)
	tx := mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 1, 5), "100")

	err := repo.TagCashFlow(context.Background(), tx, core.ActivityType("speculating"), "whoops")
	if err == nil {
		t.Fatalf("expected invalid activity error")
	}
}

func TestSumAccounts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	mustPost(t, repo, "Cash", core.Asset, core.NewDate(2023, 12, 15), "500")
	mustPost(t, repo, "Cash", core.Asset, core.NewDate(2024, 1, 10), "8000")
	mustPost(t, repo, "Petty Cash", core.Asset, core.NewDate(2024, 1, 12), "200")
	mustPost(t, repo, "Inventory", core.Asset, core.NewDate(2024, 1, 5), "9999")

	sum, err := repo.SumAccounts(ctx, []string{"Cash", "Petty Cash"}, core.Asset, core.NewDate(2024, 1, 31), nil)
	if err != nil {
		t.Fatalf("sum accounts: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("8700")) {
		t.Fatalf("sum: got %s", sum)
	}

	// empty name list short-circuits to zero
	sum, err = repo.SumAccounts(ctx, nil, core.Asset, core.NewDate(2024, 1, 31), nil)
	if err != nil {
		t.Fatalf("sum accounts: %v", err)
	}
	if !sum.IsZero() {
		t.Fatalf("empty list sum: got %s", sum)
	}
}

func TestStatementUpsertRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rec := ledger.StatementRecord{
		Type:      core.IncomeStatementType,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Data:      []byte(`{"net_income":"6000"}`),
		Standard:  "GAAP",
		UpdatedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := repo.UpsertStatement(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetStatement(ctx, core.IncomeStatementType, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("statement not found after upsert")
	}
	if string(got.Data) != string(rec.Data) || got.Standard != "GAAP" {
		t.Fatalf("got %+v", got)
	}
	if !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Fatalf("updated_at: got %s", got.UpdatedAt)
	}

	// same natural key overwrites in place
	rec.Data = []byte(`{"net_income":"7000"}`)
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Hour)
	if err := repo.UpsertStatement(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.GetStatement(ctx, core.IncomeStatementType, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != `{"net_income":"7000"}` {
		t.Fatalf("overwrite did not take: %s", got.Data)
	}

	// balance sheets use an empty start date in the same table
	bs := ledger.StatementRecord{
		Type:      core.BalanceSheetType,
		StartDate: "",
		EndDate:   "2024-01-31",
		Data:      []byte(`{}`),
		Standard:  "GAAP",
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.UpsertStatement(ctx, bs); err != nil {
		t.Fatalf("balance sheet upsert: %v", err)
	}
	if err := repo.UpsertStatement(ctx, bs); err != nil {
		t.Fatalf("balance sheet re-upsert: %v", err)
	}

	recs, err := repo.ListStatementsUpdatedSince(ctx, time.Time{}, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 distinct statements, got %d", len(recs))
	}
}

func TestGetStatementMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetStatement(context.Background(), core.CashFlowType, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}
}

func TestRatioUpsertRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rec := ledger.RatioRecord{
		AsOfDate:  "2024-01-31",
		Data:      []byte(`{"debt_ratio":0.4,"inventory_turnover":"+Inf"}`),
		UpdatedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := repo.UpsertRatios(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertRatios(ctx, rec); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := repo.GetRatios(ctx, "2024-01-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("ratios not found after upsert")
	}
	if string(got.Data) != string(rec.Data) {
		t.Fatalf("data: got %s", got.Data)
	}

	missing, err := repo.GetRatios(ctx, "2024-02-29")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing date, got %+v", missing)
	}
}
