package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"triplog/internal/models"
)

// CSVWriter writes the logbook to a local file, for runs without a
// configured spreadsheet.
type CSVWriter struct {
	Path string
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{Path: path}
}

// WriteReport writes the header, one record per row and a total record.
func (w *CSVWriter) WriteReport(ctx context.Context, report *models.Report) error {
	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if err := cw.Write(models.ReportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			strconv.Itoa(row.Item),
			row.Date,
			row.StartTime,
			row.EndTime,
			row.StartingPoint,
			row.Destination,
			row.Purpose,
			fmt.Sprintf("%.2f", row.DistanceKm),
			fmt.Sprintf("%.0f", row.StartOdometer),
			fmt.Sprintf("%.0f", row.EndOdometer),
			strconv.Itoa(row.DurationMinutes),
			row.ActivityType,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Item, err)
		}
	}

	total := make([]string, len(models.ReportColumns))
	total[6] = "Total Distance Traveled in Fiscal Year"
	total[7] = fmt.Sprintf("%.2f", report.TotalDistanceKm)
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	log.Printf("[Sheets] Wrote %d rows to %s (total %.2f km)", len(report.Rows), w.Path, report.TotalDistanceKm)
	return nil
}
