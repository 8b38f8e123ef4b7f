package core

import (
	"github.com/shopspring/decimal"
)

type (
	// Section is one side of a statement: per-account line items plus
	// their total.
	Section struct {
		Items []AccountBalance `json:"items"`
		Total decimal.Decimal  `json:"total"`
	}

	// ActivitySection groups cash-flow lines for one activity type.
	ActivitySection struct {
		Items   []CashFlowLine  `json:"items"`
		NetCash decimal.Decimal `json:"net_cash"`
	}

	IncomeStatement struct {
		StartDate   Date            `json:"start_date"`
		EndDate     Date            `json:"end_date"`
		Currency    string          `json:"currency"`
		Revenue     Section         `json:"revenue"`
		Expenses    Section         `json:"expenses"`
		GrossProfit decimal.Decimal `json:"gross_profit"`
		NetIncome   decimal.Decimal `json:"net_income"`
	}

	// BalanceSheet is a point-in-time snapshot. Imbalance reports how far
	// the ledger is from Assets = Liabilities + Equity; it is reported,
	// never corrected.
	BalanceSheet struct {
		AsOfDate    Date            `json:"as_of_date"`
		Currency    string          `json:"currency"`
		Assets      Section         `json:"assets"`
		Liabilities Section         `json:"liabilities"`
		Equity      Section         `json:"equity"`
		Imbalance   decimal.Decimal `json:"imbalance"`
	}

	CashFlowStatement struct {
		StartDate           Date            `json:"start_date"`
		EndDate             Date            `json:"end_date"`
		Currency            string          `json:"currency"`
		OperatingActivities ActivitySection `json:"operating_activities"`
		InvestingActivities ActivitySection `json:"investing_activities"`
		FinancingActivities ActivitySection `json:"financing_activities"`
		NetChangeInCash     decimal.Decimal `json:"net_change_in_cash"`
		OpeningCash         decimal.Decimal `json:"opening_cash"`
		ClosingCash         decimal.Decimal `json:"closing_cash"`
	}

	LiquidityRatios struct {
		CurrentRatio Ratio `json:"current_ratio"`
		QuickRatio   Ratio `json:"quick_ratio"`
	}

	ProfitabilityRatios struct {
		ProfitMargin   Ratio `json:"profit_margin"`
		ReturnOnAssets Ratio `json:"return_on_assets"`
		ReturnOnEquity Ratio `json:"return_on_equity"`
	}

	LeverageRatios struct {
		DebtRatio        Ratio `json:"debt_ratio"`
		DebtToEquity     Ratio `json:"debt_to_equity"`
		InterestCoverage Ratio `json:"interest_coverage"`
	}

	EfficiencyRatios struct {
		AssetTurnover     Ratio `json:"asset_turnover"`
		InventoryTurnover Ratio `json:"inventory_turnover"`
	}

	RatioSet struct {
		AsOfDate      Date                `json:"as_of_date"`
		Liquidity     LiquidityRatios     `json:"liquidity"`
		Profitability ProfitabilityRatios `json:"profitability"`
		Leverage      LeverageRatios      `json:"leverage"`
		Efficiency    EfficiencyRatios    `json:"efficiency"`
	}
)

// NewSection builds a section from ledger balances and totals them.
func NewSection(items []AccountBalance) Section {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Balance)
	}
	return Section{Items: items, Total: total}
}

// NewActivitySection builds an activity section from cash-flow lines.
func NewActivitySection(items []CashFlowLine) ActivitySection {
	net := decimal.Zero
	for _, it := range items {
		net = net.Add(it.Amount)
	}
	return ActivitySection{Items: items, NetCash: net}
}

// LineAmount returns the balance of the named line item, zero if absent.
func (s Section) LineAmount(account string) decimal.Decimal {
	for _, it := range s.Items {
		if it.Account == account {
			return it.Balance
		}
	}
	return decimal.Zero
}

// Round rounds every figure in the section to precision decimal digits.
func (s Section) Round(precision int) Section {
	items := make([]AccountBalance, len(s.Items))
	for i, it := range s.Items {
		items[i] = AccountBalance{Account: it.Account, Balance: it.Balance.Round(int32(precision))}
	}
	return Section{Items: items, Total: s.Total.Round(int32(precision))}
}

// Round rounds every figure in the activity section.
func (s ActivitySection) Round(precision int) ActivitySection {
	items := make([]CashFlowLine, len(s.Items))
	for i, it := range s.Items {
		items[i] = CashFlowLine{Description: it.Description, Amount: it.Amount.Round(int32(precision))}
	}
	return ActivitySection{Items: items, NetCash: s.NetCash.Round(int32(precision))}
}
