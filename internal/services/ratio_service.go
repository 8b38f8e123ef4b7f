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

// RatioService derives liquidity, profitability, leverage and efficiency
// ratios from a balance sheet and a month-to-date income statement at the
// as-of date. A zero denominator in any documented formula yields positive
// infinity, never an error: the numeric contract is total.
type RatioService struct {
	statements *StatementService
	store      ledger.Store
	events     EventPublisher
	cfg        config.Engine
	logger     *applog.Logger
}

func NewRatioService(statements *StatementService, store ledger.Store, events EventPublisher, cfg config.Engine) *RatioService {
	return &RatioService{
		statements: statements,
		store:      store,
		events:     events,
		cfg:        cfg,
		logger:     applog.Default(applog.ComponentRatio),
	}
}

// Compute generates the underlying snapshots, derives the ratio set and
// persists it keyed by the as-of date.
func (s *RatioService) Compute(ctx context.Context, asOf core.Date) (*core.RatioSet, error) {
	bs, err := s.statements.BalanceSheet(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("balance sheet for ratios: %w", err)
	}
	is, err := s.statements.IncomeStatement(ctx, asOf.StartOfMonth(), asOf)
	if err != nil {
		return nil, fmt.Errorf("income statement for ratios: %w", err)
	}

	// Designated line items come from configuration, not hard-coded names.
	inventory := bs.Assets.LineAmount(s.cfg.InventoryAccount)
	cogs := is.Expenses.LineAmount(s.cfg.COGSAccount)
	interest := is.Expenses.LineAmount(s.cfg.InterestExpenseAccount)
	operatingIncome := is.NetIncome.Add(interest)

	p := s.cfg.Precision
	set := &core.RatioSet{
		AsOfDate: asOf,
		Liquidity: core.LiquidityRatios{
			CurrentRatio: core.DivideRatio(bs.Assets.Total, bs.Liabilities.Total).Round(p),
			QuickRatio:   core.DivideRatio(bs.Assets.Total.Sub(inventory), bs.Liabilities.Total).Round(p),
		},
		Profitability: core.ProfitabilityRatios{
			ProfitMargin:   core.DivideRatio(is.NetIncome, is.Revenue.Total).Round(p),
			ReturnOnAssets: core.DivideRatio(is.NetIncome, bs.Assets.Total).Round(p),
			ReturnOnEquity: core.DivideRatio(is.NetIncome, bs.Equity.Total).Round(p),
		},
		Leverage: core.LeverageRatios{
			DebtRatio:        core.DivideRatio(bs.Liabilities.Total, bs.Assets.Total).Round(p),
			DebtToEquity:     core.DivideRatio(bs.Liabilities.Total, bs.Equity.Total).Round(p),
			InterestCoverage: core.DivideRatio(operatingIncome, interest).Round(p),
		},
		Efficiency: core.EfficiencyRatios{
			AssetTurnover:     core.DivideRatio(is.Revenue.Total, bs.Assets.Total).Round(p),
			InventoryTurnover: core.DivideRatio(cogs, inventory).Round(p),
		},
	}

	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode ratios: %w", err)
	}
	rec := ledger.RatioRecord{
		AsOfDate:  asOf.String(),
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertRatios(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist ratios: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishRatiosComputed(ctx, asOf.String()); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish ratio event",
				"as_of_date", asOf.String(),
				"error", err)
		}
	}

	return set, nil
}
