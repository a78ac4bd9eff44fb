package sheets

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"triplog/internal/models"
)

// GoogleWriter writes the logbook to a Google Sheets tab: a total cell in
// the first row, a styled header, one row per trip and a trailing total row.
type GoogleWriter struct {
	srv           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

// NewGoogleWriter creates a sheet writer authenticated with a service
// account credentials file.
func NewGoogleWriter(ctx context.Context, credentialsPath, spreadsheetID, sheetName string) (*GoogleWriter, error) {
	srv, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleWriter{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// WriteReport clears the tab, writes the report and applies formatting.
func (w *GoogleWriter) WriteReport(ctx context.Context, report *models.Report) error {
	values := buildValues(report)

	clearRange := fmt.Sprintf("'%s'!A:Z", w.sheetName)
	if _, err := w.srv.Spreadsheets.Values.
		Clear(w.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("'%s'!A1", w.sheetName)
	result, err := w.srv.Spreadsheets.Values.
		Update(w.spreadsheetID, writeRange, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := w.applyFormatting(ctx, len(values)); err != nil {
		return err
	}

	log.Printf("[Sheets] Wrote %d rows to %q (total %.2f km)",
		result.UpdatedRows, w.sheetName, report.TotalDistanceKm)
	return nil
}

// buildValues lays out the tab: total in the last column of row 1, header
// in row 2, data rows, a blank spacer and a labeled total row.
func buildValues(report *models.Report) [][]interface{} {
	cols := len(models.ReportColumns) + 1 // trailing column holds the totals

	totalRow := make([]interface{}, cols)
	totalRow[cols-1] = report.TotalDistanceKm

	header := make([]interface{}, cols)
	for i, name := range models.ReportColumns {
		header[i] = name
	}
	header[cols-1] = ""

	values := [][]interface{}{totalRow, header}
	for _, row := range report.Rows {
		values = append(values, []interface{}{
			row.Item,
			row.Date,
			row.StartTime,
			row.EndTime,
			row.StartingPoint,
			row.Destination,
			row.Purpose,
			fmt.Sprintf("%.2f", row.DistanceKm),
			fmt.Sprintf("%.0f", row.StartOdometer),
			fmt.Sprintf("%.0f", row.EndOdometer),
			row.DurationMinutes,
			row.ActivityType,
			"",
		})
	}

	values = append(values, make([]interface{}, cols))

	footer := make([]interface{}, cols)
	footer[7] = "Total Distance Traveled in Fiscal Year"
	footer[cols-1] = report.TotalDistanceKm
	values = append(values, footer)

	return values
}

func (w *GoogleWriter) applyFormatting(ctx context.Context, rowCount int) error {
	sheetID, err := w.sheetID(ctx)
	if err != nil {
		return err
	}

	numberFormat := func(startCol, endCol int64, pattern string) *sheetsapi.Request {
		return &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    2,
					EndRowIndex:      int64(rowCount),
					StartColumnIndex: startCol,
					EndColumnIndex:   endCol,
				},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						HorizontalAlignment: "CENTER",
						NumberFormat: &sheetsapi.NumberFormat{
							Type:    "NUMBER",
							Pattern: pattern,
						},
					},
				},
				Fields: "userEnteredFormat.horizontalAlignment,userEnteredFormat.numberFormat",
			},
		}
	}

	requests := []*sheetsapi.Request{
		// Bold, underlined header row
		{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      2,
					StartColumnIndex: 0,
					EndColumnIndex:   13,
				},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						TextFormat: &sheetsapi.TextFormat{Bold: true, Underline: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		numberFormat(7, 8, "#,##0.00"),   // Km Driven
		numberFormat(8, 9, "#,##0"),      // Start Odometer
		numberFormat(9, 10, "#,##0"),     // End Odometer
		numberFormat(12, 13, "#,##0.00"), // total column
	}

	_, err = w.srv.Spreadsheets.
		BatchUpdate(w.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to format sheet: %w", err)
	}
	return nil
}

func (w *GoogleWriter) sheetID(ctx context.Context) (int64, error) {
	spreadsheet, err := w.srv.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == w.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, nil
}
