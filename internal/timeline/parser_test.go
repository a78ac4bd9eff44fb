package timeline

import (
	"strings"
	"testing"
	"time"

	"triplog/internal/models"
)

const sampleExport = `{
	"semanticSegments": [
		{
			"startTime": "2025-03-10T09:00:00Z",
			"endTime": "2025-03-10T09:25:00Z",
			"activity": {
				"start": {"latLng": "43.5707239°, -79.5797226°"},
				"end": {"latLng": "43.6532000°, -79.3832000°"},
				"distanceMeters": 18200,
				"topCandidate": {"type": "IN_PASSENGER_VEHICLE", "probability": 0.92}
			}
		},
		{
			"startTime": "2025-03-10T08:00:00Z",
			"endTime": "2025-03-10T09:00:00Z",
			"visit": {
				"hierarchyLevel": 0,
				"probability": 0.87,
				"topCandidate": {
					"placeId": "place-home",
					"semanticType": "HOME",
					"probability": 0.95,
					"placeLocation": {"latLng": "43.5707239°, -79.5797226°"}
				}
			}
		},
		{
			"startTime": "2025-03-10T09:25:00Z",
			"endTime": "2025-03-10T11:00:00Z",
			"visit": {
				"topCandidate": {
					"placeId": "",
					"semanticType": "UNKNOWN"
				}
			}
		},
		{
			"startTime": "2025-03-10T11:00:00Z",
			"endTime": "2025-03-10T11:20:00Z",
			"timelinePath": [
				{"point": "43.6532000°, -79.3832000°", "time": "2025-03-10T11:01:00Z"}
			]
		},
		{
			"startTime": "",
			"endTime": "2025-03-10T12:00:00Z",
			"visit": {"topCandidate": {"placeId": "place-broken"}}
		},
		{
			"startTime": "2020-01-01T08:00:00Z",
			"endTime": "2020-01-01T09:00:00Z",
			"visit": {"topCandidate": {"placeId": "place-old"}}
		}
	]
}`

func windowNormalizer() *Normalizer {
	return &Normalizer{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseNormalizesAndSorts(t *testing.T) {
	segments, stats, err := windowNormalizer().Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatal(err)
	}

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].StartTime.Before(segments[i-1].StartTime) {
			t.Fatal("segments not sorted by start time")
		}
	}

	// The visit starts earlier than the activity but appears later in the
	// raw export; sorting must put it first.
	if segments[0].Kind != models.SegmentVisit || segments[0].PlaceID != "place-home" {
		t.Errorf("first segment should be the home visit, got %+v", segments[0])
	}
	if segments[0].SemanticType != "HOME" {
		t.Errorf("semantic type lost: %q", segments[0].SemanticType)
	}

	act := segments[1]
	if act.Kind != models.SegmentActivity || act.ActivityType != "IN_PASSENGER_VEHICLE" {
		t.Errorf("second segment should be the drive, got %+v", act)
	}
	if act.DistanceMeters != 18200 {
		t.Errorf("distance lost: %v", act.DistanceMeters)
	}
	if !act.HasCoords || act.StartLat != 43.5707239 || act.EndLon != -79.3832 {
		t.Errorf("coordinates not parsed: %+v", act)
	}

	if stats.Visits != 2 || stats.Activities != 1 {
		t.Errorf("wrong kind counts: %+v", stats)
	}
}

func TestParseSkipsMalformedAndPathSegments(t *testing.T) {
	_, stats, err := windowNormalizer().Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatal(err)
	}

	if stats.SkippedPaths != 1 {
		t.Errorf("timelinePath segment should be skipped, got %d", stats.SkippedPaths)
	}
	if stats.SkippedMalformed != 1 {
		t.Errorf("segment with empty startTime should be counted malformed, got %d", stats.SkippedMalformed)
	}
	if stats.SkippedOutside != 1 {
		t.Errorf("2020 visit is outside the window, got %d", stats.SkippedOutside)
	}
}

func TestParseKeepsVisitWithoutPlaceID(t *testing.T) {
	segments, stats, err := windowNormalizer().Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, seg := range segments {
		if seg.Kind == models.SegmentVisit && seg.PlaceID == "" {
			found = true
		}
	}
	if !found {
		t.Error("visit without a place reference must be retained")
	}
	if stats.UnresolvedVisits != 1 {
		t.Errorf("expected 1 unresolved visit, got %d", stats.UnresolvedVisits)
	}
}

func TestParseRejectsExportWithoutSegments(t *testing.T) {
	if _, _, err := windowNormalizer().Parse(strings.NewReader(`{"foo": 1}`)); err == nil {
		t.Error("export without semanticSegments should fail")
	}
	if _, _, err := windowNormalizer().Parse(strings.NewReader(`not json`)); err == nil {
		t.Error("invalid JSON should fail")
	}
}

func TestParseLatLng(t *testing.T) {
	lat, lng, ok := ParseLatLng("43.5707239°, -79.5797226°")
	if !ok || lat != 43.5707239 || lng != -79.5797226 {
		t.Errorf("got %v, %v, %v", lat, lng, ok)
	}

	if _, _, ok := ParseLatLng("garbage"); ok {
		t.Error("garbage should not parse")
	}
	if _, _, ok := ParseLatLng(""); ok {
		t.Error("empty string should not parse")
	}
	if _, _, ok := ParseLatLng("1.0, 2.0, 3.0"); ok {
		t.Error("three components should not parse")
	}
}
