// Package timeline parses Google Timeline location-history exports into
// normalized, time-sorted segments.
package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"triplog/internal/models"
)

// Raw export structures, matching the semanticSegments schema.
type export struct {
	SemanticSegments []rawSegment `json:"semanticSegments"`
}

type rawSegment struct {
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
	Visit     *rawVisit     `json:"visit,omitempty"`
	Activity  *rawActivity  `json:"activity,omitempty"`
	Path      []rawPathStep `json:"timelinePath,omitempty"`
}

type rawVisit struct {
	HierarchyLevel int     `json:"hierarchyLevel"`
	Probability    float64 `json:"probability"`
	TopCandidate   struct {
		PlaceID       string  `json:"placeId"`
		SemanticType  string  `json:"semanticType"`
		Probability   float64 `json:"probability"`
		PlaceLocation struct {
			LatLng string `json:"latLng"`
		} `json:"placeLocation"`
	} `json:"topCandidate"`
}

type rawActivity struct {
	Start struct {
		LatLng string `json:"latLng"`
	} `json:"start"`
	End struct {
		LatLng string `json:"latLng"`
	} `json:"end"`
	DistanceMeters float64 `json:"distanceMeters"`
	TopCandidate   struct {
		Type        string  `json:"type"`
		Probability float64 `json:"probability"`
	} `json:"topCandidate"`
}

type rawPathStep struct {
	Point string `json:"point"`
	Time  string `json:"time"`
}

// Stats counts what the normalizer saw and dropped. Malformed records are
// skipped and counted, never fatal.
type Stats struct {
	Total            int
	Visits           int
	Activities       int
	SkippedPaths     int
	SkippedMalformed int
	SkippedOutside   int
	UnresolvedVisits int
}

// Normalizer turns a raw export into a sorted Segment sequence. StartDate
// and EndDate, when set, bound the run window (inclusive, by segment start).
type Normalizer struct {
	StartDate time.Time
	EndDate   time.Time
}

// ParseFile reads and normalizes a Timeline JSON export from disk.
func (n *Normalizer) ParseFile(path string) ([]models.Segment, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open timeline export: %w", err)
	}
	defer f.Close()
	return n.Parse(f)
}

// Parse normalizes a Timeline JSON export. Re-invoking it on a fresh reader
// restarts the sequence from the beginning.
func (n *Normalizer) Parse(r io.Reader) ([]models.Segment, Stats, error) {
	var data export
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, Stats{}, fmt.Errorf("failed to decode timeline export: %w", err)
	}
	if data.SemanticSegments == nil {
		return nil, Stats{}, fmt.Errorf("timeline export has no semanticSegments")
	}

	var (
		stats    Stats
		segments []models.Segment
	)
	stats.Total = len(data.SemanticSegments)

	for _, raw := range data.SemanticSegments {
		seg, ok := n.normalize(raw, &stats)
		if !ok {
			continue
		}
		segments = append(segments, seg)
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].StartTime.Before(segments[j].StartTime)
	})

	log.Printf("[Normalizer] %d segments: %d visits, %d activities (skipped: %d paths, %d malformed, %d outside window)",
		len(segments), stats.Visits, stats.Activities,
		stats.SkippedPaths, stats.SkippedMalformed, stats.SkippedOutside)

	return segments, stats, nil
}

func (n *Normalizer) normalize(raw rawSegment, stats *Stats) (models.Segment, bool) {
	// timelinePath records carry raw points but no place identity; the
	// trip pairing never reads them.
	if raw.Visit == nil && raw.Activity == nil {
		stats.SkippedPaths++
		return models.Segment{}, false
	}

	start, err1 := parseTimestamp(raw.StartTime)
	end, err2 := parseTimestamp(raw.EndTime)
	if err1 != nil || err2 != nil || end.Before(start) {
		stats.SkippedMalformed++
		return models.Segment{}, false
	}

	if !n.inWindow(start) {
		stats.SkippedOutside++
		return models.Segment{}, false
	}

	if raw.Visit != nil {
		seg := models.Segment{
			Kind:         models.SegmentVisit,
			StartTime:    start,
			EndTime:      end,
			PlaceID:      raw.Visit.TopCandidate.PlaceID,
			SemanticType: raw.Visit.TopCandidate.SemanticType,
			Probability:  raw.Visit.TopCandidate.Probability,
		}
		// A visit without a place reference is kept; it resolves to the
		// unresolved placeholder downstream.
		if seg.PlaceID == "" {
			stats.UnresolvedVisits++
		}
		stats.Visits++
		return seg, true
	}

	act := raw.Activity
	seg := models.Segment{
		Kind:           models.SegmentActivity,
		StartTime:      start,
		EndTime:        end,
		ActivityType:   act.TopCandidate.Type,
		DistanceMeters: act.DistanceMeters,
		Probability:    act.TopCandidate.Probability,
	}
	if lat1, lon1, ok1 := ParseLatLng(act.Start.LatLng); ok1 {
		if lat2, lon2, ok2 := ParseLatLng(act.End.LatLng); ok2 {
			seg.StartLat, seg.StartLon = lat1, lon1
			seg.EndLat, seg.EndLon = lat2, lon2
			seg.HasCoords = true
		}
	}
	stats.Activities++
	return seg, true
}

func (n *Normalizer) inWindow(start time.Time) bool {
	if !n.StartDate.IsZero() && start.Before(n.StartDate) {
		return false
	}
	if !n.EndDate.IsZero() && !start.Before(n.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// ParseLatLng parses a coordinate string like "43.5707239°, -79.5797226°".
func ParseLatLng(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(strings.ReplaceAll(s, "°", ""), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
