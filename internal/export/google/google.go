// Package google exports monthly spending reports to a Google
// Sheets spreadsheet using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"masarif/internal/export"
	"masarif/internal/log"
)

// Config holds everything the client needs, no ambient lookups beyond
// credential resolution.
type Config struct {
	SpreadsheetID string
	SheetName     string
	// One of CredentialsJSON or CredentialsFile. When both are empty
	// the GOOGLE_APPLICATION_CREDENTIALS file is used.
	CredentialsJSON string
	CredentialsFile string
}

// Client appends report rows to one sheet of one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ export.ReportWriter = (*Client)(nil)

// New creates a Sheets client from the given configuration.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Reports"
	}

	credentialsJSON, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func resolveCredentials(cfg Config) ([]byte, error) {
	if json := strings.TrimSpace(cfg.CredentialsJSON); json != "" {
		return []byte(json), nil
	}

	file := strings.TrimSpace(cfg.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials")
	}

	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// AppendMonthlyReport appends one report row to the sheet.
func (c *Client) AppendMonthlyReport(ctx context.Context, report export.MonthlyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		report.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		report.UserID,
		fmt.Sprintf("%04d-%02d", report.Year, int(report.Month)),
		report.TotalSpent.Amount(),
		report.BudgetCeiling.Amount(),
		report.PercentUsed,
		string(report.State),
		report.Currency,
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report to sheet %s: %w", c.sheetName, err)
	}

	c.logger.InfoContext(ctx, "report exported",
		log.FieldOperation, log.OpExportReport,
		log.FieldUserID, report.UserID,
		log.FieldYear, report.Year,
		log.FieldMonth, int(report.Month))

	return nil
}
