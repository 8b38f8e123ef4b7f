package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finlens/internal/config"
	"finlens/internal/core"
	"finlens/internal/ledger"
	applog "finlens/internal/log"
)

// StatementService builds financial statements from the ledger and persists
// each result through the store's natural-key upsert. Every generate call is
// a synchronous read-compute-write sequence; regenerating an unchanged
// period rewrites an identical payload, refreshing only the timestamp.
type StatementService struct {
	reader ledger.Reader
	store  ledger.Store
	events EventPublisher
	cfg    config.Engine
	logger *applog.Logger
}

func NewStatementService(reader ledger.Reader, store ledger.Store, events EventPublisher, cfg config.Engine) *StatementService {
	return &StatementService{
		reader: reader,
		store:  store,
		events: events,
		cfg:    cfg,
		logger: applog.Default(applog.ComponentStatement),
	}
}

// IncomeStatement generates and persists the income statement for
// [start, end]. Gross profit subtracts only the designated cost-of-goods
// line; net income subtracts all expenses.
func (s *StatementService) IncomeStatement(ctx context.Context, start, end core.Date) (*core.IncomeStatement, error) {
	if err := core.ValidateRange(start, end); err != nil {
		return nil, err
	}

	revenueItems, err := s.reader.AccountBalances(ctx, core.Revenue, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("read revenue balances: %w", err)
	}
	expenseItems, err := s.reader.AccountBalances(ctx, core.Expense, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("read expense balances: %w", err)
	}

	revenue := core.NewSection(revenueItems).Round(s.cfg.Precision)
	expenses := core.NewSection(expenseItems).Round(s.cfg.Precision)

	st := &core.IncomeStatement{
		StartDate:   start,
		EndDate:     end,
		Currency:    s.cfg.Currency,
		Revenue:     revenue,
		Expenses:    expenses,
		GrossProfit: revenue.Total.Sub(expenses.LineAmount(s.cfg.COGSAccount)).Round(int32(s.cfg.Precision)),
		NetIncome:   revenue.Total.Sub(expenses.Total).Round(int32(s.cfg.Precision)),
	}

	if err := s.persist(ctx, core.IncomeStatementType, start.String(), end.String(), st); err != nil {
		return nil, err
	}
	return st, nil
}

// BalanceSheet generates and persists the point-in-time balance sheet at
// asOf. The window implicitly starts at the beginning of the ledger. The
// accounting identity is reported through Imbalance, never auto-corrected.
func (s *StatementService) BalanceSheet(ctx context.Context, asOf core.Date) (*core.BalanceSheet, error) {
	assetItems, err := s.reader.AccountBalances(ctx, core.Asset, nil, &asOf)
	if err != nil {
		return nil, fmt.Errorf("read asset balances: %w", err)
	}
	liabilityItems, err := s.reader.AccountBalances(ctx, core.Liability, nil, &asOf)
	if err != nil {
		return nil, fmt.Errorf("read liability balances: %w", err)
	}
	equityItems, err := s.reader.AccountBalances(ctx, core.Equity, nil, &asOf)
	if err != nil {
		return nil, fmt.Errorf("read equity balances: %w", err)
	}

	assets := core.NewSection(assetItems).Round(s.cfg.Precision)
	liabilities := core.NewSection(liabilityItems).Round(s.cfg.Precision)
	equity := core.NewSection(equityItems).Round(s.cfg.Precision)

	imbalance := assets.Total.Sub(liabilities.Total).Sub(equity.Total).Round(int32(s.cfg.Precision))
	if !imbalance.IsZero() {
		s.logger.WarnContext(ctx, "Balance sheet does not balance",
			"as_of_date", asOf.String(),
			"imbalance", imbalance.String())
	}

	st := &core.BalanceSheet{
		AsOfDate:    asOf,
		Currency:    s.cfg.Currency,
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Imbalance:   imbalance,
	}

	if err := s.persist(ctx, core.BalanceSheetType, "", asOf.String(), st); err != nil {
		return nil, err
	}
	return st, nil
}

// CashFlow generates and persists the cash-flow statement for [start, end],
// with opening and closing cash taken from the designated cash accounts.
func (s *StatementService) CashFlow(ctx context.Context, start, end core.Date) (*core.CashFlowStatement, error) {
	if err := core.ValidateRange(start, end); err != nil {
		return nil, err
	}

	sections := make(map[core.ActivityType]core.ActivitySection, 3)
	for _, activity := range []core.ActivityType{core.Operating, core.Investing, core.Financing} {
		lines, err := s.reader.CashFlowLines(ctx, activity, start, end)
		if err != nil {
			return nil, fmt.Errorf("read %s cash flow lines: %w", activity, err)
		}
		sections[activity] = core.NewActivitySection(lines).Round(s.cfg.Precision)
	}

	opening, err := s.reader.SumAccounts(ctx, s.cfg.CashAccounts, core.Asset, start, nil)
	if err != nil {
		return nil, fmt.Errorf("read opening cash balance: %w", err)
	}
	closing, err := s.reader.SumAccounts(ctx, s.cfg.CashAccounts, core.Asset, end, nil)
	if err != nil {
		return nil, fmt.Errorf("read closing cash balance: %w", err)
	}

	netChange := sections[core.Operating].NetCash.
		Add(sections[core.Investing].NetCash).
		Add(sections[core.Financing].NetCash)

	st := &core.CashFlowStatement{
		StartDate:           start,
		EndDate:             end,
		Currency:            s.cfg.Currency,
		OperatingActivities: sections[core.Operating],
		InvestingActivities: sections[core.Investing],
		FinancingActivities: sections[core.Financing],
		NetChangeInCash:     netChange.Round(int32(s.cfg.Precision)),
		OpeningCash:         opening.Round(int32(s.cfg.Precision)),
		ClosingCash:         closing.Round(int32(s.cfg.Precision)),
	}

	if err := s.persist(ctx, core.CashFlowType, start.String(), end.String(), st); err != nil {
		return nil, err
	}
	return st, nil
}

// persist writes the statement as one logical unit and, when a publisher is
// configured, emits a statement-generated event. Persistence failures
// surface to the caller; publish failures do not.
func (s *StatementService) persist(ctx context.Context, st core.StatementType, startDate, endDate string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", st, err)
	}

	rec := ledger.StatementRecord{
		Type:      st,
		StartDate: startDate,
		EndDate:   endDate,
		Data:      data,
		Standard:  s.cfg.AccountingStandard,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertStatement(ctx, rec); err != nil {
		return fmt.Errorf("persist %s: %w", st, err)
	}

	if s.events != nil {
		if err := s.events.PublishStatementGenerated(ctx, st, startDate, endDate); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish statement event",
				"statement_type", st,
				"end_date", endDate,
				"error", err)
		}
	}

	return nil
}
