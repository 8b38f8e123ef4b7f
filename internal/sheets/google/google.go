package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finlens/internal/core"
	"finlens/internal/ledger"
	ports "finlens/internal/sheets"
)

// Client appends persisted statements and ratio sets to a Google
// spreadsheet, one row per export. The sheet acts as an append-only
// reporting log; the database stays the source of truth.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.StatementExporter = (*Client)(nil)
	_ ports.RatioExporter     = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Reports").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// ExportStatement appends one summary row for a persisted statement.
func (c *Client) ExportStatement(ctx context.Context, rec ledger.StatementRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := statementRow(rec)
	if err != nil {
		return "", err
	}
	return c.appendRow(ctx, row)
}

// ExportRatios appends one summary row for a persisted ratio set.
func (c *Client) ExportRatios(ctx context.Context, rec ledger.RatioRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	var set core.RatioSet
	if err := json.Unmarshal(rec.Data, &set); err != nil {
		return "", fmt.Errorf("decode ratio payload: %w", err)
	}

	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		"ratios",
		rec.AsOfDate,
		"", // no period start for point-in-time rows
		set.Liquidity.CurrentRatio.String(),
		set.Liquidity.QuickRatio.String(),
		set.Profitability.ProfitMargin.String(),
		set.Profitability.ReturnOnAssets.String(),
		set.Profitability.ReturnOnEquity.String(),
		set.Leverage.DebtRatio.String(),
		set.Leverage.DebtToEquity.String(),
		set.Leverage.InterestCoverage.String(),
		set.Efficiency.AssetTurnover.String(),
		set.Efficiency.InventoryTurnover.String(),
	}
	return c.appendRow(ctx, row)
}

// statementRow flattens the stored payload into spreadsheet columns using
// the same metric list the variance analyzer reports on.
func statementRow(rec ledger.StatementRecord) ([]any, error) {
	var metrics []core.Metric
	var currency string

	switch rec.Type {
	case core.IncomeStatementType:
		var st core.IncomeStatement
		if err := json.Unmarshal(rec.Data, &st); err != nil {
			return nil, fmt.Errorf("decode income statement payload: %w", err)
		}
		metrics, currency = st.Metrics(), st.Currency
	case core.BalanceSheetType:
		var st core.BalanceSheet
		if err := json.Unmarshal(rec.Data, &st); err != nil {
			return nil, fmt.Errorf("decode balance sheet payload: %w", err)
		}
		metrics, currency = st.Metrics(), st.Currency
	case core.CashFlowType:
		var st core.CashFlowStatement
		if err := json.Unmarshal(rec.Data, &st); err != nil {
			return nil, fmt.Errorf("decode cash flow payload: %w", err)
		}
		metrics, currency = st.Metrics(), st.Currency
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidStatementType, rec.Type)
	}

	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		string(rec.Type),
		rec.EndDate,
		rec.StartDate,
		rec.Standard,
		currency,
	}
	for _, m := range metrics {
		row = append(row, m.Label, m.Value.String())
	}
	return row, nil
}

// appendRow finds the next empty row and writes the values there, returning
// a range reference for the written row.
func (c *Client) appendRow(ctx context.Context, values []any) (string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}

	nextRow := len(resp.Values) + 1
	dataRange := fmt.Sprintf("%s!A%d", c.sheetName, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{values}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A%d", c.sheetName, nextRow)
	slog.InfoContext(ctx, "Exported row to Google Sheets", "ref", ref)
	return ref, nil
}
