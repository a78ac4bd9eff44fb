package models

// ReportColumns is the logbook column layout, in output order.
var ReportColumns = []string{
	"Item",
	"Date",
	"Start Time",
	"End Time",
	"Starting Point",
	"Destination",
	"Purpose of Trip",
	"Km Driven",
	"Start Odometer",
	"End Odometer",
	"Duration (min)",
	"Activity_type",
}

// ReportRow is one logbook line for an included trip. Item is the 1-based
// display index assigned after filtering, distinct from Trip.SequenceIndex.
type ReportRow struct {
	Item            int     `json:"item"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	StartingPoint   string  `json:"starting_point"`
	Destination     string  `json:"destination"`
	Purpose         string  `json:"purpose"`
	DistanceKm      float64 `json:"distance_km"`
	StartOdometer   float64 `json:"start_odometer"`
	EndOdometer     float64 `json:"end_odometer"`
	DurationMinutes int     `json:"duration_minutes"`
	ActivityType    string  `json:"activity_type"`
}

// Report is the assembled logbook: one row per included trip plus the
// total distance over those rows.
type Report struct {
	Rows            []ReportRow `json:"rows"`
	TotalDistanceKm float64     `json:"total_distance_km"`
}
