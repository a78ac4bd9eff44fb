package models

import "time"

// Trip is one reconstructed vehicle movement between two visits.
type Trip struct {
	ID int64 `json:"id" db:"id"`

	// Position in the full chronological ledger, dense and monotonic over
	// all trips regardless of filtering.
	SequenceIndex int `json:"sequence_index" db:"sequence_index"`

	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`

	OriginPlaceID string `json:"origin_place_id,omitempty" db:"origin_place_id"`
	DestPlaceID   string `json:"dest_place_id,omitempty" db:"dest_place_id"`
	OriginAddress string `json:"origin_address,omitempty" db:"origin_address"`
	DestAddress   string `json:"dest_address,omitempty" db:"dest_address"`

	DistanceKm   float64 `json:"distance_km" db:"distance_km"`
	ActivityType string  `json:"activity_type,omitempty" db:"activity_type"`

	// Populated by the odometer pass for every trip, filtered or not.
	StartOdometer float64 `json:"start_odometer" db:"start_odometer"`
	EndOdometer   float64 `json:"end_odometer" db:"end_odometer"`

	Included bool   `json:"included" db:"included"`
	Purpose  string `json:"purpose,omitempty" db:"purpose"`
}

// DurationMinutes returns the trip duration in whole minutes.
func (t *Trip) DurationMinutes() int {
	return int(t.EndTime.Sub(t.StartTime).Minutes())
}

// Ledger is the chronologically ordered sequence of all trips for a run.
// The sole shared mutable structure of the pipeline; ownership passes stage
// to stage, never concurrently.
type Ledger []*Trip

// IncludedTrips returns the trips surviving all filter rules, in order.
func (l Ledger) IncludedTrips() []*Trip {
	var kept []*Trip
	for _, t := range l {
		if t.Included {
			kept = append(kept, t)
		}
	}
	return kept
}

// TotalIncludedKm sums distance over included trips only.
func (l Ledger) TotalIncludedKm() float64 {
	var total float64
	for _, t := range l {
		if t.Included {
			total += t.DistanceKm
		}
	}
	return total
}

// OdometerAnchor is the single externally known (date, reading) pair every
// other odometer value is derived from.
type OdometerAnchor struct {
	Date    time.Time `json:"date"`
	Reading float64   `json:"reading"`
}
