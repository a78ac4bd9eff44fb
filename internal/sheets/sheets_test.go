package sheets

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"triplog/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Rows: []models.ReportRow{
			{
				Item:            1,
				Date:            "2025-05-01",
				StartTime:       "08:45:00",
				EndTime:         "09:15:00",
				StartingPoint:   "12 Main St, Kincardine, ON",
				Destination:     "Plant 4, Tiverton, ON",
				Purpose:         "Travel to Customer Site",
				DistanceKm:      32,
				StartOdometer:   59934,
				EndOdometer:     59966,
				DurationMinutes: 30,
				ActivityType:    models.ActivityPassengerVehicle,
			},
			{
				Item:            2,
				Date:            "2025-05-01",
				StartTime:       "16:30:00",
				EndTime:         "17:05:00",
				StartingPoint:   "Plant 4, Tiverton, ON",
				Destination:     "12 Main St, Kincardine, ON",
				DistanceKm:      32.5,
				StartOdometer:   59966,
				EndOdometer:     59998,
				DurationMinutes: 35,
				ActivityType:    models.ActivityPassengerVehicle,
			},
		},
		TotalDistanceKm: 64.5,
	}
}

func TestCSVWriterLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := NewCSVWriter(path).WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Header, two trips, total row.
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0][0] != "Item" || records[0][7] != "Km Driven" {
		t.Errorf("header: %v", records[0])
	}
	if records[1][0] != "1" || records[1][5] != "Plant 4, Tiverton, ON" {
		t.Errorf("first trip record: %v", records[1])
	}
	if records[1][7] != "32.00" || records[1][8] != "59934" {
		t.Errorf("numeric formatting: %v", records[1])
	}

	total := records[3]
	if total[6] != "Total Distance Traveled in Fiscal Year" || total[7] != "64.50" {
		t.Errorf("total record: %v", total)
	}
}

func TestBuildValuesLayout(t *testing.T) {
	values := buildValues(sampleReport())

	// Total row, header, two trips, spacer, footer.
	if len(values) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(values))
	}

	cols := len(models.ReportColumns) + 1
	for i, row := range values {
		if len(row) != cols {
			t.Fatalf("row %d has %d cells, want %d", i, len(row), cols)
		}
	}

	if values[0][cols-1] != 64.5 {
		t.Errorf("running total cell: %v", values[0][cols-1])
	}
	if values[1][0] != "Item" || values[1][11] != "Activity_type" {
		t.Errorf("header row: %v", values[1])
	}
	if values[2][0] != 1 || values[2][7] != "32.00" {
		t.Errorf("first trip row: %v", values[2])
	}
	for _, cell := range values[4] {
		if cell != nil {
			t.Fatalf("spacer row should be empty, got %v", values[4])
		}
	}
	footer := values[5]
	if footer[7] != "Total Distance Traveled in Fiscal Year" || footer[cols-1] != 64.5 {
		t.Errorf("footer row: %v", footer)
	}
}
