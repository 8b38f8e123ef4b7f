// Package memory provides an in-process ledger and statement store. It
// serves the memory backend and deterministic engine tests; semantics match
// the SQLite repository, including empty-result reads and natural-key
// upserts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/ledger"
)

type posting struct {
	account  string
	accType  core.AccountType
	date     core.Date
	amount   decimal.Decimal
	activity core.ActivityType
	cashDesc string
	tagged   bool
}

type Store struct {
	mu         sync.Mutex
	postings   []posting
	statements map[string]ledger.StatementRecord
	ratios     map[string]ledger.RatioRecord
}

var (
	_ ledger.Reader = (*Store)(nil)
	_ ledger.Store  = (*Store)(nil)
)

func New() *Store {
	return &Store{
		statements: make(map[string]ledger.StatementRecord),
		ratios:     make(map[string]ledger.RatioRecord),
	}
}

// Post records a transaction against the named account.
func (s *Store) Post(account string, accountType core.AccountType, date core.Date, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = append(s.postings, posting{
		account: account,
		accType: accountType,
		date:    date,
		amount:  amount,
	})
}

// PostCashFlow records a transaction tagged with a cash-flow activity.
func (s *Store) PostCashFlow(account string, accountType core.AccountType, date core.Date, amount decimal.Decimal, activity core.ActivityType, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = append(s.postings, posting{
		account:  account,
		accType:  accountType,
		date:     date,
		amount:   amount,
		activity: activity,
		cashDesc: description,
		tagged:   true,
	})
}

func inWindow(d core.Date, start, end *core.Date) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}

// AccountBalances implements ledger.Reader.
func (s *Store) AccountBalances(_ context.Context, accountType core.AccountType, start, end *core.Date) ([]core.AccountBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]decimal.Decimal)
	for _, p := range s.postings {
		if p.accType != accountType || !inWindow(p.date, start, end) {
			continue
		}
		sums[p.account] = sums[p.account].Add(p.amount)
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.AccountBalance, 0, len(names))
	for _, name := range names {
		out = append(out, core.AccountBalance{Account: name, Balance: sums[name]})
	}
	return out, nil
}

// CashFlowLines implements ledger.Reader.
func (s *Store) CashFlowLines(_ context.Context, activity core.ActivityType, start, end core.Date) ([]core.CashFlowLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]decimal.Decimal)
	for _, p := range s.postings {
		if !p.tagged || p.activity != activity || !inWindow(p.date, &start, &end) {
			continue
		}
		sums[p.cashDesc] = sums[p.cashDesc].Add(p.amount)
	}

	descs := make([]string, 0, len(sums))
	for desc := range sums {
		descs = append(descs, desc)
	}
	sort.Strings(descs)

	out := make([]core.CashFlowLine, 0, len(descs))
	for _, desc := range descs {
		out = append(out, core.CashFlowLine{Description: desc, Amount: sums[desc]})
	}
	return out, nil
}

// SumAccounts implements ledger.Reader.
func (s *Store) SumAccounts(_ context.Context, names []string, accountType core.AccountType, end core.Date, start *core.Date) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	named := make(map[string]struct{}, len(names))
	for _, n := range names {
		named[n] = struct{}{}
	}

	sum := decimal.Zero
	for _, p := range s.postings {
		if p.accType != accountType {
			continue
		}
		if _, ok := named[p.account]; !ok {
			continue
		}
		if !inWindow(p.date, start, &end) {
			continue
		}
		sum = sum.Add(p.amount)
	}
	return sum, nil
}

func statementKey(st core.StatementType, startDate, endDate string) string {
	return string(st) + "|" + startDate + "|" + endDate
}

// UpsertStatement implements ledger.Store.
func (s *Store) UpsertStatement(_ context.Context, rec ledger.StatementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[statementKey(rec.Type, rec.StartDate, rec.EndDate)] = rec
	return nil
}

// GetStatement implements ledger.Store.
func (s *Store) GetStatement(_ context.Context, st core.StatementType, startDate, endDate string) (*ledger.StatementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.statements[statementKey(st, startDate, endDate)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// UpsertRatios implements ledger.Store.
func (s *Store) UpsertRatios(_ context.Context, rec ledger.RatioRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratios[rec.AsOfDate] = rec
	return nil
}

// GetRatios implements ledger.Store.
func (s *Store) GetRatios(_ context.Context, asOfDate string) (*ledger.RatioRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ratios[asOfDate]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListStatementsUpdatedSince returns statements whose UpdatedAt is at or
// after the cutoff, oldest first.
func (s *Store) ListStatementsUpdatedSince(_ context.Context, since time.Time, limit int) ([]ledger.StatementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ledger.StatementRecord
	for _, rec := range s.statements {
		if rec.UpdatedAt.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// StatementCount reports how many distinct statement rows are stored.
func (s *Store) StatementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statements)
}
