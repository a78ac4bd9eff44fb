// Package pipeline turns normalized timeline segments into the annotated
// trip ledger: extraction, odometer assignment, filtering, purpose labeling
// and report assembly, run strictly in that order.
package pipeline

import (
	"log"
	"sort"
	"time"

	"triplog/internal/models"
	"triplog/internal/spatial"
)

// extractState is the pairing state machine's position.
type extractState int

const (
	// awaitingOrigin: looking for a visit to anchor the next trip.
	awaitingOrigin extractState = iota
	// inTransit: a vehicle activity is open, origin known, waiting for
	// the terminating visit.
	inTransit
)

// ExtractStats counts extraction outcomes.
type ExtractStats struct {
	Trips int
	// Vehicle activities seen before any visit; they cannot be paired and
	// never enter the ledger.
	Incomplete int
	// Non-vehicle activities, ignored for trip boundaries.
	NonVehicle int
	// Consecutive vehicle activities merged into an already-open trip.
	Merged int
}

// Extractor pairs vehicle activities with their bounding visits.
type Extractor struct {
	// VehicleTypes are the activity types treated as car travel.
	VehicleTypes map[string]bool

	// Trips spanning longer than this are logged; long vehicle-activity
	// chains with no visit in between usually mean a gappy export.
	LongTripWarn time.Duration
}

// NewExtractor creates an extractor for the given vehicle activity types.
func NewExtractor(vehicleTypes []string) *Extractor {
	types := make(map[string]bool, len(vehicleTypes))
	for _, t := range vehicleTypes {
		types[t] = true
	}
	return &Extractor{
		VehicleTypes: types,
		LongTripWarn: 12 * time.Hour,
	}
}

// Extract runs a single pass over segments sorted by start time and returns
// the chronological ledger. Consecutive vehicle activities between two
// visits merge into one trip; its distance is their sum.
func (e *Extractor) Extract(segments []models.Segment) (models.Ledger, ExtractStats) {
	var (
		stats  ExtractStats
		ledger models.Ledger
		state  = awaitingOrigin
		origin *models.Segment
		open   *models.Trip
	)

	for i := range segments {
		seg := &segments[i]

		switch seg.Kind {
		case models.SegmentVisit:
			if state == inTransit {
				open.DestPlaceID = seg.PlaceID
				ledger = append(ledger, open)
				open = nil
				state = awaitingOrigin
			}
			// The visit anchors whatever trip starts next — including
			// the one that just ended here.
			origin = seg

		case models.SegmentActivity:
			if !seg.IsVehicle(e.VehicleTypes) {
				stats.NonVehicle++
				continue
			}

			switch state {
			case awaitingOrigin:
				if origin == nil {
					// Export starts mid-drive; nothing to pair with.
					stats.Incomplete++
					continue
				}
				open = &models.Trip{
					StartTime:     seg.StartTime,
					EndTime:       seg.EndTime,
					OriginPlaceID: origin.PlaceID,
					DistanceKm:    e.distanceKm(seg),
					ActivityType:  seg.ActivityType,
					Included:      true,
				}
				state = inTransit

			case inTransit:
				// GPS gaps split one drive into several activity
				// records; extend the open trip.
				open.EndTime = seg.EndTime
				open.DistanceKm += e.distanceKm(seg)
				stats.Merged++
			}
		}
	}

	if open != nil {
		// Trailing activity with no terminating visit
		stats.Incomplete++
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].StartTime.Before(ledger[j].StartTime)
	})
	for i, t := range ledger {
		t.SequenceIndex = i
		if span := t.EndTime.Sub(t.StartTime); span > e.LongTripWarn {
			log.Printf("[Extractor] Trip %d spans %v with no intervening visit; check the export for gaps", i, span)
		}
	}
	stats.Trips = len(ledger)

	log.Printf("[Extractor] %d trips (%d merged activities, %d incomplete, %d non-vehicle)",
		stats.Trips, stats.Merged, stats.Incomplete, stats.NonVehicle)

	return ledger, stats
}

// distanceKm converts the reported activity distance to kilometers, falling
// back to the great-circle distance between endpoints when the export omits
// distanceMeters.
func (e *Extractor) distanceKm(seg *models.Segment) float64 {
	if seg.DistanceMeters > 0 {
		return seg.DistanceMeters / 1000
	}
	if seg.HasCoords {
		return spatial.HaversineDistance(seg.StartLat, seg.StartLon, seg.EndLat, seg.EndLon) / 1000
	}
	return 0
}
