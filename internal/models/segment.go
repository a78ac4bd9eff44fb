package models

import "time"

// SegmentKind distinguishes the two normalized timeline record types.
type SegmentKind string

const (
	SegmentVisit    SegmentKind = "VISIT"
	SegmentActivity SegmentKind = "ACTIVITY"
)

// Activity type reported by the export for car travel.
const ActivityPassengerVehicle = "IN_PASSENGER_VEHICLE"

// Segment is a normalized timeline record: either a stay at a place (Visit)
// or a movement (Activity). Immutable once produced by the normalizer.
type Segment struct {
	Kind      SegmentKind `json:"kind"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`

	// Visit fields
	PlaceID      string  `json:"place_id,omitempty"`
	SemanticType string  `json:"semantic_type,omitempty"`
	Probability  float64 `json:"probability,omitempty"`

	// Activity fields
	ActivityType   string  `json:"activity_type,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
	StartLat       float64 `json:"start_lat,omitempty"`
	StartLon       float64 `json:"start_lon,omitempty"`
	EndLat         float64 `json:"end_lat,omitempty"`
	EndLon         float64 `json:"end_lon,omitempty"`
	HasCoords      bool    `json:"has_coords,omitempty"`
}

// IsVehicle reports whether the segment is a movement of one of the given
// vehicle activity types.
func (s *Segment) IsVehicle(vehicleTypes map[string]bool) bool {
	return s.Kind == SegmentActivity && vehicleTypes[s.ActivityType]
}
