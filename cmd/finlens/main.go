package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finlens/internal/backend"
	"finlens/internal/cli"
	"finlens/internal/core"
	"finlens/internal/services"
	"finlens/internal/storage"
)

const usage = `Usage: finlens <command> [flags]

Commands:
  post      record a ledger transaction
  income    generate an income statement for a period
  balance   generate a balance sheet as of a date
  cashflow  generate a cash flow statement for a period
  ratios    compute financial ratios as of a date
  variance  compare statement metrics across two periods
  close     generate all statements and ratios for a period end
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	statements := services.NewStatementService(result.Reader, result.Store, result.Events, cfg.Engine)
	ratios := services.NewRatioService(statements, result.Store, result.Events, cfg.Engine)
	variance := services.NewVarianceService(statements, cfg.Engine)

	var out any

	switch command {
	case "post":
		out, err = runPost(ctx, result, args)
	case "income":
		out, err = runIncome(ctx, statements, args)
	case "balance":
		out, err = runBalance(ctx, statements, args)
	case "cashflow":
		out, err = runCashFlow(ctx, statements, args)
	case "ratios":
		out, err = runRatios(ctx, ratios, args)
	case "variance":
		out, err = runVariance(ctx, variance, args)
	case "close":
		out, err = runClose(ctx, statements, ratios, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("Failed to encode output", "error", err)
		os.Exit(1)
	}
}

func runPost(ctx context.Context, result *backend.Result, args []string) (any, error) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	account := fs.String("account", "", "account name")
	accountType := fs.String("type", "", "account type (asset|liability|equity|revenue|expense)")
	date := fs.String("date", "", "transaction date (YYYY-MM-DD)")
	amount := fs.String("amount", "", "signed amount")
	activity := fs.String("activity", "", "optional cash flow activity (operating|investing|financing)")
	description := fs.String("description", "", "cash flow line description")
	fs.Parse(args)

	repo, ok := result.Store.(*storage.SQLiteRepository)
	if !ok {
		return nil, fmt.Errorf("post requires the sqlite backend")
	}

	at, err := core.ParseAccountType(*accountType)
	if err != nil {
		return nil, err
	}
	d, err := core.ParseDate(*date)
	if err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", *amount, err)
	}

	accountID, err := repo.CreateAccount(ctx, *account, at)
	if err != nil {
		return nil, err
	}
	txID, err := repo.PostTransaction(ctx, accountID, d, amt)
	if err != nil {
		return nil, err
	}
	if *activity != "" {
		act, err := core.ParseActivityType(*activity)
		if err != nil {
			return nil, err
		}
		if err := repo.TagCashFlow(ctx, txID, act, *description); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "Transaction posted",
		"account", *account,
		"date", d.String(),
		"amount", amt.String())

	return map[string]any{"transaction_id": txID, "account_id": accountID}, nil
}

func runIncome(ctx context.Context, statements *services.StatementService, args []string) (any, error) {
	fs := flag.NewFlagSet("income", flag.ExitOnError)
	start := fs.String("start", "", "period start (YYYY-MM-DD, default: start of end month)")
	end := fs.String("end", "", "period end (YYYY-MM-DD, default: today)")
	fs.Parse(args)

	startDate, endDate, err := resolvePeriod(*start, *end)
	if err != nil {
		return nil, err
	}
	return statements.IncomeStatement(ctx, startDate, endDate)
}

func runBalance(ctx context.Context, statements *services.StatementService, args []string) (any, error) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	asOf := fs.String("as-of", "", "snapshot date (YYYY-MM-DD, default: today)")
	fs.Parse(args)

	asOfDate, err := resolveDate(*asOf)
	if err != nil {
		return nil, err
	}
	return statements.BalanceSheet(ctx, asOfDate)
}

func runCashFlow(ctx context.Context, statements *services.StatementService, args []string) (any, error) {
	fs := flag.NewFlagSet("cashflow", flag.ExitOnError)
	start := fs.String("start", "", "period start (YYYY-MM-DD, default: start of end month)")
	end := fs.String("end", "", "period end (YYYY-MM-DD, default: today)")
	fs.Parse(args)

	startDate, endDate, err := resolvePeriod(*start, *end)
	if err != nil {
		return nil, err
	}
	return statements.CashFlow(ctx, startDate, endDate)
}

func runRatios(ctx context.Context, ratios *services.RatioService, args []string) (any, error) {
	fs := flag.NewFlagSet("ratios", flag.ExitOnError)
	asOf := fs.String("as-of", "", "snapshot date (YYYY-MM-DD, default: today)")
	fs.Parse(args)

	asOfDate, err := resolveDate(*asOf)
	if err != nil {
		return nil, err
	}
	return ratios.Compute(ctx, asOfDate)
}

func runVariance(ctx context.Context, variance *services.VarianceService, args []string) (any, error) {
	fs := flag.NewFlagSet("variance", flag.ExitOnError)
	statementType := fs.String("type", "income_statement", "statement type to compare")
	end := fs.String("end", "", "current period end (YYYY-MM-DD, default: today)")
	previousEnd := fs.String("previous-end", "", "previous period end (default: one year earlier)")
	fs.Parse(args)

	st, err := core.ParseStatementType(*statementType)
	if err != nil {
		return nil, err
	}
	endDate, err := resolveDate(*end)
	if err != nil {
		return nil, err
	}

	var prev *core.Date
	if *previousEnd != "" {
		p, err := core.ParseDate(*previousEnd)
		if err != nil {
			return nil, err
		}
		prev = &p
	}

	return variance.Analyze(ctx, st, endDate, prev)
}

// runClose generates the three statements concurrently, then derives the
// ratio set. Each statement persists independently, so a failure in one
// leaves the others in place.
func runClose(ctx context.Context, statements *services.StatementService, ratios *services.RatioService, args []string) (any, error) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	end := fs.String("end", "", "period end (YYYY-MM-DD, default: today)")
	fs.Parse(args)

	endDate, err := resolveDate(*end)
	if err != nil {
		return nil, err
	}
	startDate := endDate.StartOfMonth()

	var (
		income   *core.IncomeStatement
		balance  *core.BalanceSheet
		cashFlow *core.CashFlowStatement
	)
	eg, groupCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		income, err = statements.IncomeStatement(groupCtx, startDate, endDate)
		return err
	})
	eg.Go(func() error {
		var err error
		balance, err = statements.BalanceSheet(groupCtx, endDate)
		return err
	})
	eg.Go(func() error {
		var err error
		cashFlow, err = statements.CashFlow(groupCtx, startDate, endDate)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ratioSet, err := ratios.Compute(ctx, endDate)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"income_statement": income,
		"balance_sheet":    balance,
		"cash_flow":        cashFlow,
		"ratios":           ratioSet,
	}, nil
}

func resolveDate(value string) (core.Date, error) {
	if value == "" {
		now := time.Now().UTC()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(value)
}

func resolvePeriod(start, end string) (core.Date, core.Date, error) {
	endDate, err := resolveDate(end)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	startDate := endDate.StartOfMonth()
	if start != "" {
		startDate, err = core.ParseDate(start)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
	}
	return startDate, endDate, nil
}
