package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Asset     AccountType = "Asset"
	Liability AccountType = "Liability"
	Equity    AccountType = "Equity"
	Revenue   AccountType = "Revenue"
	Expense   AccountType = "Expense"
)

const (
	Operating ActivityType = "Operating"
	Investing ActivityType = "Investing"
	Financing ActivityType = "Financing"
)

const (
	IncomeStatementType StatementType = "income_statement"
	BalanceSheetType    StatementType = "balance_sheet"
	CashFlowType        StatementType = "cash_flow"
)

type (
	AccountType   string
	ActivityType  string
	StatementType string

	// Account is a named ledger account. Accounts are owned by the ledger
	// store; the engine only reads them.
	Account struct {
		ID   int64
		Name string
		Type AccountType
	}

	// Transaction is a signed posting against an account. Immutable once
	// posted; amounts are kept in cents and surfaced as decimals.
	Transaction struct {
		ID        int64
		AccountID int64
		Date      Date
		Amount    decimal.Decimal
	}

	// CashFlowItem tags a transaction with a cash-flow activity.
	CashFlowItem struct {
		TransactionID int64
		Activity      ActivityType
		Description   string
	}

	// AccountBalance is one (account name, summed amount) pair from the
	// ledger, as returned by balance queries.
	AccountBalance struct {
		Account string          `json:"account"`
		Balance decimal.Decimal `json:"balance"`
	}

	// CashFlowLine is one (description, summed amount) pair for a
	// cash-flow activity.
	CashFlowLine struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
	}
)

var (
	ErrInvalidStatementType = errors.New("invalid statement type")
	ErrInvalidDateRange     = errors.New("end date before start date")
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidActivityType  = errors.New("invalid activity type")
)

// ParseAccountType accepts the canonical spelling case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset":
		return Asset, nil
	case "liability":
		return Liability, nil
	case "equity":
		return Equity, nil
	case "revenue":
		return Revenue, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
}

// ParseStatementType validates a caller-supplied statement type.
func ParseStatementType(s string) (StatementType, error) {
	switch StatementType(strings.TrimSpace(s)) {
	case IncomeStatementType:
		return IncomeStatementType, nil
	case BalanceSheetType:
		return BalanceSheetType, nil
	case CashFlowType:
		return CashFlowType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatementType, s)
}

func (t StatementType) String() string { return string(t) }

// ParseActivityType accepts the canonical spelling case-insensitively.
func ParseActivityType(s string) (ActivityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "operating":
		return Operating, nil
	case "investing":
		return Investing, nil
	case "financing":
		return Financing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidActivityType, s)
}

func (t ActivityType) Valid() bool {
	switch t {
	case Operating, Investing, Financing:
		return true
	}
	return false
}

// ValidateRange rejects windows whose end precedes their start. The caller
// is told rather than having the bounds silently swapped.
func ValidateRange(start, end Date) error {
	if end.Before(start) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	return nil
}
