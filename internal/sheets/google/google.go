// Package google adapts the export port to the Google Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/config"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	ports "github.com/MiantsaNomena/Examen-Final-WEB2/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ExpenseExporter = (*Client)(nil)

// NewFromConfig builds a Sheets client from explicit credentials, falling
// back to Application Default Credentials when none are configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	var opts []goption.ClientOption
	switch {
	case cfg.GoogleCredentialsJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
	case cfg.GoogleCredentialsFile != "":
		opts = append(opts, goption.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// AppendExpense adds one row per expense:
// id | user | type | date | start | end | amount | category | description | status
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	row := []interface{}{
		e.ID,
		e.UserID,
		string(e.Type),
		e.Date.String(),
		e.StartDate.String(),
		e.EndDate.String(),
		e.Amount.String(),
		e.CategoryID,
		e.Description,
		"active",
	}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:J", &gsheet.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append expense row: %w", err)
	}

	slog.InfoContext(ctx, "Expense exported to sheet",
		"id", e.ID, "spreadsheet_id", c.spreadsheetID, "sheet", c.sheetName)
	return nil
}

// MarkDeleted locates the expense's row by id and flips its status column.
// The row itself stays so the sheet remains an audit trail.
func (c *Client) MarkDeleted(ctx context.Context, expenseID string) error {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, c.sheetName+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read id column: %w", err)
	}

	rowIndex := -1
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == expenseID {
			rowIndex = i + 1 // sheet rows are 1-based
			break
		}
	}
	if rowIndex < 0 {
		slog.WarnContext(ctx, "Expense row not found in sheet, nothing to mark",
			"id", expenseID)
		return nil
	}

	statusCell := fmt.Sprintf("%s!J%d", c.sheetName, rowIndex)
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, statusCell, &gsheet.ValueRange{Values: [][]interface{}{{"deleted"}}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("mark row deleted: %w", err)
	}

	slog.InfoContext(ctx, "Expense marked deleted in sheet", "id", expenseID, "row", rowIndex)
	return nil
}
