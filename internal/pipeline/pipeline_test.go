package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"triplog/internal/config"
	"triplog/internal/geocode"
	"triplog/internal/models"
	"triplog/internal/sheets"
)

type fakeGeocoder struct {
	addresses map[string]string
	calls     int
}

func (f *fakeGeocoder) PlaceDetails(_ context.Context, placeID string) (*geocode.Result, error) {
	f.calls++
	return &geocode.Result{Address: f.addresses[placeID]}, nil
}

type memLedgerStore struct {
	ledger models.Ledger
}

func (s *memLedgerStore) Replace(ledger models.Ledger) error {
	s.ledger = ledger
	return nil
}

func (s *memLedgerStore) UpdateAnnotations(models.Ledger) error { return nil }

func (s *memLedgerStore) GetAll() (models.Ledger, error) { return s.ledger, nil }

type captureWriter struct {
	report *models.Report
}

func (w *captureWriter) WriteReport(_ context.Context, report *models.Report) error {
	w.report = report
	return nil
}

const pipelineExport = `{
	"semanticSegments": [
		{
			"startTime": "2025-05-01T08:00:00Z", "endTime": "2025-05-01T08:45:00Z",
			"visit": {"topCandidate": {"placeId": "home"}}
		},
		{
			"startTime": "2025-05-01T08:45:00Z", "endTime": "2025-05-01T09:15:00Z",
			"activity": {"distanceMeters": 32000, "topCandidate": {"type": "IN_PASSENGER_VEHICLE"}}
		},
		{
			"startTime": "2025-05-01T09:15:00Z", "endTime": "2025-05-01T16:30:00Z",
			"visit": {"topCandidate": {"placeId": "plant"}}
		},
		{
			"startTime": "2025-05-01T16:30:00Z", "endTime": "2025-05-01T17:05:00Z",
			"activity": {"distanceMeters": 32500, "topCandidate": {"type": "IN_PASSENGER_VEHICLE"}}
		},
		{
			"startTime": "2025-05-01T17:05:00Z", "endTime": "2025-05-01T23:00:00Z",
			"visit": {"topCandidate": {"placeId": "home"}}
		},
		{
			"startTime": "2025-05-02T10:00:00Z", "endTime": "2025-05-02T10:10:00Z",
			"activity": {"distanceMeters": 2000, "topCandidate": {"type": "IN_PASSENGER_VEHICLE"}}
		},
		{
			"startTime": "2025-05-02T10:10:00Z", "endTime": "2025-05-02T11:00:00Z",
			"visit": {"topCandidate": {"placeId": "grocer"}}
		}
	]
}`

func TestPipelineRunEndToEnd(t *testing.T) {
	exportPath := filepath.Join(t.TempDir(), "timeline.json")
	if err := os.WriteFile(exportPath, []byte(pipelineExport), 0o644); err != nil {
		t.Fatal(err)
	}

	geocoder := &fakeGeocoder{addresses: map[string]string{
		"home":   "12 Main St, Kincardine, ON",
		"plant":  "Plant 4, Tiverton, ON",
		"grocer": "9 Market St, Kincardine, ON",
	}}
	resolver := geocode.NewResolver(geocoder, geocode.NewMemoryStore(), 1, 0)

	cfg := &config.Config{
		TimelinePath: exportPath,
		Anchor: models.OdometerAnchor{
			Date:    time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Reading: 60000,
		},
		DedupeConsecutive:    true,
		MinTripKm:            15,
		RegionToken:          ", on",
		PurposeRules:         []config.PurposeRule{{Token: "tiverton", Label: "Travel to Customer Site"}},
		VehicleActivityTypes: []string{models.ActivityPassengerVehicle},
	}

	store := &memLedgerStore{}
	writer := &captureWriter{}
	var _ sheets.Writer = writer

	if err := New(cfg, resolver, store, writer).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Three trips extracted: home->plant, plant->home, home->grocer.
	if len(store.ledger) != 3 {
		t.Fatalf("expected 3 trips in the ledger, got %d", len(store.ledger))
	}

	// Three distinct places, one external call each.
	if geocoder.calls != 3 {
		t.Errorf("expected 3 geocode calls, got %d", geocoder.calls)
	}

	// The 2 km grocer run falls under the 15 km threshold; two rows remain.
	if writer.report == nil {
		t.Fatal("no report written")
	}
	if len(writer.report.Rows) != 2 {
		t.Fatalf("expected 2 report rows, got %d", len(writer.report.Rows))
	}
	if writer.report.TotalDistanceKm != 64.5 {
		t.Errorf("total distance: %v", writer.report.TotalDistanceKm)
	}
	if writer.report.Rows[0].Purpose != "Travel to Customer Site" {
		t.Errorf("purpose: %q", writer.report.Rows[0].Purpose)
	}

	// Odometer chain covers all trips, reported or not.
	for i := 0; i < len(store.ledger)-1; i++ {
		if store.ledger[i].EndOdometer != store.ledger[i+1].StartOdometer {
			t.Errorf("odometer chain broken between trips %d and %d", i, i+1)
		}
	}

	// Both 2025-05-01 trips start on or before the anchor date's end; the
	// grocer trip on 2025-05-02 also counts as before the 2025-05-02 anchor,
	// so the known reading lands at its end.
	last := store.ledger[2]
	if last.EndOdometer != 60000 {
		t.Errorf("anchor reading should sit at the last trip's end, got %v", last.EndOdometer)
	}
}

func TestPipelineSkipImportReusesLedger(t *testing.T) {
	store := &memLedgerStore{ledger: models.Ledger{
		{
			StartTime:     time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
			EndTime:       time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
			OriginAddress: "A",
			DestAddress:   "B",
			DistanceKm:    25,
			Included:      true,
		},
	}}

	cfg := &config.Config{
		SkipSegmentImport: true,
		Anchor: models.OdometerAnchor{
			Date:    time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Reading: 1000,
		},
	}

	writer := &captureWriter{}
	resolver := geocode.NewResolver(nil, geocode.NewMemoryStore(), 1, 0)

	if err := New(cfg, resolver, store, writer).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if writer.report == nil || len(writer.report.Rows) != 1 {
		t.Fatal("persisted ledger was not reused")
	}
	if writer.report.Rows[0].EndOdometer != 1000 {
		t.Errorf("odometer not re-anchored: %v", writer.report.Rows[0].EndOdometer)
	}
}

func TestPipelineEmptyLedgerIsFatal(t *testing.T) {
	cfg := &config.Config{
		SkipSegmentImport: true,
		Anchor: models.OdometerAnchor{
			Date:    time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Reading: 1000,
		},
	}
	resolver := geocode.NewResolver(nil, geocode.NewMemoryStore(), 1, 0)

	err := New(cfg, resolver, &memLedgerStore{}, &captureWriter{}).Run(context.Background())
	if err == nil {
		t.Fatal("empty ledger must fail the run")
	}
}
