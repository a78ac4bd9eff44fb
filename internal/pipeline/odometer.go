package pipeline

import (
	"errors"
	"fmt"
	"log"
	"time"

	"triplog/internal/models"
)

// Anchor failures are fatal: without a defensible anchor no odometer value
// in the report can be trusted.
var (
	ErrEmptyLedger   = errors.New("ledger is empty")
	ErrAnchorMissing = errors.New("odometer anchor date is not set")
)

// AssignOdometer fills start/end odometer readings on every trip in the
// ledger, excluded trips included — they still consumed real distance, so
// skipping them would break the chain for everything around them.
//
// The known reading is placed at the end of the last trip starting on or
// before the anchor date; earlier trips are back-filled, later trips
// forward-filled. For adjacent trips i and i+1 the resulting invariant is
// endOdometer(i) == startOdometer(i+1).
func AssignOdometer(ledger models.Ledger, anchor models.OdometerAnchor) error {
	if len(ledger) == 0 {
		return fmt.Errorf("cannot anchor odometer: %w", ErrEmptyLedger)
	}
	if anchor.Date.IsZero() {
		return ErrAnchorMissing
	}

	// Trips starting on or before the anchor date count as "before";
	// the anchor reading is the odometer at the end of the last of them.
	cutoff := anchor.Date.AddDate(0, 0, 1)
	split := len(ledger)
	for i, t := range ledger {
		if !t.StartTime.Before(cutoff) {
			split = i
			break
		}
	}

	running := anchor.Reading
	for i := split - 1; i >= 0; i-- {
		t := ledger[i]
		t.EndOdometer = running
		t.StartOdometer = running - t.DistanceKm
		running = t.StartOdometer
	}

	running = anchor.Reading
	for i := split; i < len(ledger); i++ {
		t := ledger[i]
		t.StartOdometer = running
		t.EndOdometer = running + t.DistanceKm
		running = t.EndOdometer
	}

	logAnchorPosition(ledger, anchor, split)
	return nil
}

func logAnchorPosition(ledger models.Ledger, anchor models.OdometerAnchor, split int) {
	anchorDay := anchor.Date.Format("2006-01-02")
	switch split {
	case 0:
		log.Printf("[Odometer] Anchor %s=%.0f precedes all %d trips; forward-filling only",
			anchorDay, anchor.Reading, len(ledger))
	case len(ledger):
		log.Printf("[Odometer] Anchor %s=%.0f follows all %d trips; back-filling only",
			anchorDay, anchor.Reading, len(ledger))
	default:
		log.Printf("[Odometer] Anchor %s=%.0f placed after trip %d of %d",
			anchorDay, anchor.Reading, split, len(ledger))
	}
	first := ledger[0]
	log.Printf("[Odometer] Earliest trip %s starts at %.0f km",
		first.StartTime.Format(time.DateOnly), first.StartOdometer)
}
