// Package ledger defines the engine's contracts with the external data
// store: read-only ledger aggregation queries and upsert-by-natural-key
// persistence of generated statements and ratios.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
)

type (
	// Reader is the read-only ledger contract. All queries return empty
	// results or zero on no match, never an error.
	Reader interface {
		// AccountBalances sums transaction amounts per account of the
		// given type within the optional window, grouped and sorted by
		// account name ascending.
		AccountBalances(ctx context.Context, accountType core.AccountType, start, end *core.Date) ([]core.AccountBalance, error)

		// CashFlowLines sums tagged transaction amounts per description
		// for one activity type, grouped and sorted by description
		// ascending.
		CashFlowLines(ctx context.Context, activity core.ActivityType, start, end core.Date) ([]core.CashFlowLine, error)

		// SumAccounts sums transaction amounts across the named accounts
		// of the given type up to end, optionally bounded below by start.
		// Used for point-in-time balances such as the cash position.
		SumAccounts(ctx context.Context, names []string, accountType core.AccountType, end core.Date, start *core.Date) (decimal.Decimal, error)
	}

	// StatementRecord is a persisted financial statement row. StartDate
	// is empty for point-in-time statements (balance sheets), whose
	// window implicitly starts at the beginning of the ledger.
	StatementRecord struct {
		Type      core.StatementType
		StartDate string
		EndDate   string
		Data      []byte
		Standard  string
		UpdatedAt time.Time
	}

	// RatioRecord is a persisted ratio set row, keyed by as-of date.
	RatioRecord struct {
		AsOfDate  string
		Data      []byte
		UpdatedAt time.Time
	}

	// Store persists generated statements and ratios. Upserts are keyed
	// by natural key: (type, start_date, end_date) for statements,
	// as_of_date for ratios. Re-running with identical inputs overwrites
	// in place, refreshing only the timestamp.
	Store interface {
		UpsertStatement(ctx context.Context, rec StatementRecord) error
		GetStatement(ctx context.Context, st core.StatementType, startDate, endDate string) (*StatementRecord, error)
		UpsertRatios(ctx context.Context, rec RatioRecord) error
		GetRatios(ctx context.Context, asOfDate string) (*RatioRecord, error)
	}
)
