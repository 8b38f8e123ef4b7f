package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finlens/internal/core"
	"finlens/internal/ledger"
	applog "finlens/internal/log"
)

// SQLiteRepository backs both sides of the engine's store contract: the
// read-only ledger queries and the statement/ratio upserts.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var (
	_ ledger.Reader = (*SQLiteRepository)(nil)
	_ ledger.Store  = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: applog.Default(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AccountBalances implements ledger.Reader. Absence of matching rows is an
// empty slice, not an error.
func (r *SQLiteRepository) AccountBalances(ctx context.Context, accountType core.AccountType, start, end *core.Date) ([]core.AccountBalance, error) {
	query := `SELECT a.name, SUM(t.amount_cents)
		FROM accounts a
		JOIN transactions t ON t.account_id = a.id
		WHERE a.type = ?`
	args := []any{string(accountType)}

	if start != nil {
		query += " AND t.date >= ?"
		args = append(args, start.String())
	}
	if end != nil {
		query += " AND t.date <= ?"
		args = append(args, end.String())
	}
	query += " GROUP BY a.name ORDER BY a.name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account balances: %w", err)
	}
	defer rows.Close()

	var balances []core.AccountBalance
	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("scan account balance: %w", err)
		}
		balances = append(balances, core.AccountBalance{
			Account: name,
			Balance: decimal.New(cents, -2),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account balances: %w", err)
	}

	return balances, nil
}

// CashFlowLines implements ledger.Reader.
func (r *SQLiteRepository) CashFlowLines(ctx context.Context, activity core.ActivityType, start, end core.Date) ([]core.CashFlowLine, error) {
	query := `SELECT c.description, SUM(t.amount_cents)
		FROM cash_flow_items c
		JOIN transactions t ON t.id = c.transaction_id
		WHERE c.activity_type = ? AND t.date >= ? AND t.date <= ?
		GROUP BY c.description ORDER BY c.description ASC`

	rows, err := r.db.QueryContext(ctx, query, string(activity), start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("query cash flow lines: %w", err)
	}
	defer rows.Close()

	var lines []core.CashFlowLine
	for rows.Next() {
		var description string
		var cents int64
		if err := rows.Scan(&description, &cents); err != nil {
			return nil, fmt.Errorf("scan cash flow line: %w", err)
		}
		lines = append(lines, core.CashFlowLine{
			Description: description,
			Amount:      decimal.New(cents, -2),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash flow lines: %w", err)
	}

	return lines, nil
}

// SumAccounts implements ledger.Reader. An empty name list or no matching
// rows yields zero.
func (r *SQLiteRepository) SumAccounts(ctx context.Context, names []string, accountType core.AccountType, end core.Date, start *core.Date) (decimal.Decimal, error) {
	if len(names) == 0 {
		return decimal.Zero, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT COALESCE(SUM(t.amount_cents), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.name IN (%s) AND a.type = ? AND t.date <= ?`, placeholders)

	args := make([]any, 0, len(names)+3)
	for _, name := range names {
		args = append(args, name)
	}
	args = append(args, string(accountType), end.String())

	if start != nil {
		query += " AND t.date >= ?"
		args = append(args, start.String())
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("sum accounts: %w", err)
	}

	return decimal.New(cents, -2), nil
}

// UpsertStatement implements ledger.Store. SQLite's ON CONFLICT gives the
// natural-key upsert atomically, so concurrent writers for the same key
// settle last-writer-wins.
func (r *SQLiteRepository) UpsertStatement(ctx context.Context, rec ledger.StatementRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO financial_statements (type, start_date, end_date, data, standard, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (type, start_date, end_date) DO UPDATE SET
			data = excluded.data,
			standard = excluded.standard,
			updated_at = excluded.updated_at`,
		string(rec.Type), rec.StartDate, rec.EndDate, string(rec.Data), rec.Standard,
		rec.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert statement: %w", err)
	}

	r.logger.InfoContext(ctx, "Statement persisted",
		"type", rec.Type,
		"start_date", rec.StartDate,
		"end_date", rec.EndDate,
		"standard", rec.Standard)

	return nil
}

// GetStatement implements ledger.Store. A missing row returns (nil, nil).
func (r *SQLiteRepository) GetStatement(ctx context.Context, st core.StatementType, startDate, endDate string) (*ledger.StatementRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT type, start_date, end_date, data, standard, updated_at
		FROM financial_statements
		WHERE type = ? AND start_date = ? AND end_date = ?`,
		string(st), startDate, endDate)

	rec, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get statement: %w", err)
	}
	return rec, nil
}

// UpsertRatios implements ledger.Store.
func (r *SQLiteRepository) UpsertRatios(ctx context.Context, rec ledger.RatioRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO financial_ratios (as_of_date, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (as_of_date) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.AsOfDate, string(rec.Data), rec.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert ratios: %w", err)
	}

	r.logger.InfoContext(ctx, "Ratios persisted", "as_of_date", rec.AsOfDate)

	return nil
}

// GetRatios implements ledger.Store. A missing row returns (nil, nil).
func (r *SQLiteRepository) GetRatios(ctx context.Context, asOfDate string) (*ledger.RatioRecord, error) {
	var rec ledger.RatioRecord
	var data, updatedAt string
	err := r.db.QueryRowContext(ctx, `SELECT as_of_date, data, updated_at
		FROM financial_ratios WHERE as_of_date = ?`, asOfDate).
		Scan(&rec.AsOfDate, &data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratios: %w", err)
	}

	rec.Data = []byte(data)
	rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse ratio timestamp: %w", err)
	}
	return &rec, nil
}

// ListStatementsUpdatedSince returns statements whose updated_at is at or
// after the cutoff, oldest first. Used by the export worker's catch-up pass.
func (r *SQLiteRepository) ListStatementsUpdatedSince(ctx context.Context, since time.Time, limit int) ([]ledger.StatementRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, start_date, end_date, data, standard, updated_at
		FROM financial_statements
		WHERE updated_at >= ?
		ORDER BY updated_at ASC
		LIMIT ?`,
		since.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var recs []ledger.StatementRecord
	for rows.Next() {
		rec, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}

	return recs, nil
}

// CreateAccount registers a ledger account, returning its id. Existing
// (name, type) pairs are reused: accounts are immutable for the engine.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, name string, accountType core.AccountType) (int64, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO accounts (name, type) VALUES (?, ?)
		ON CONFLICT (name, type) DO NOTHING`, name, string(accountType))
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE name = ? AND type = ?`,
		name, string(accountType)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup account: %w", err)
	}
	return id, nil
}

// PostTransaction appends an immutable transaction to the ledger.
func (r *SQLiteRepository) PostTransaction(ctx context.Context, accountID int64, date core.Date, amount decimal.Decimal) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO transactions (account_id, date, amount_cents) VALUES (?, ?, ?)`,
		accountID, date.String(), amount.Mul(decimal.NewFromInt(100)).IntPart())
	if err != nil {
		return 0, fmt.Errorf("post transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

// TagCashFlow attaches a cash-flow activity tag to a transaction.
func (r *SQLiteRepository) TagCashFlow(ctx context.Context, transactionID int64, activity core.ActivityType, description string) error {
	if !activity.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidActivityType, activity)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO cash_flow_items (transaction_id, activity_type, description) VALUES (?, ?, ?)`,
		transactionID, string(activity), description)
	if err != nil {
		return fmt.Errorf("tag cash flow: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*ledger.StatementRecord, error) {
	var rec ledger.StatementRecord
	var st, data, updatedAt string
	if err := row.Scan(&st, &rec.StartDate, &rec.EndDate, &data, &rec.Standard, &updatedAt); err != nil {
		return nil, err
	}
	rec.Type = core.StatementType(st)
	rec.Data = []byte(data)

	ts, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse statement timestamp: %w", err)
	}
	rec.UpdatedAt = ts
	return &rec, nil
}
