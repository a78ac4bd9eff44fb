package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"triplog/internal/database"
	"triplog/internal/models"
)

// LedgerRepository persists the trip ledger between runs, backing both the
// skip-import path and the review API.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const tripColumns = `id, sequence_index, start_time, end_time,
	origin_place_id, dest_place_id, origin_address, dest_address,
	distance_km, activity_type, start_odometer, end_odometer,
	included, purpose`

// Replace swaps the stored ledger for a freshly extracted one.
func (r *LedgerRepository) Replace(ledger models.Ledger) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM trips"); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}

		query := `
			INSERT INTO trips (
				sequence_index, start_time, end_time,
				origin_place_id, dest_place_id, origin_address, dest_address,
				distance_km, activity_type, start_odometer, end_odometer,
				included, purpose
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range ledger {
			res, err := stmt.Exec(
				t.SequenceIndex, t.StartTime.Unix(), t.EndTime.Unix(),
				t.OriginPlaceID, t.DestPlaceID, t.OriginAddress, t.DestAddress,
				t.DistanceKm, t.ActivityType, t.StartOdometer, t.EndOdometer,
				t.Included, t.Purpose,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip %d: %w", t.SequenceIndex, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get trip id: %w", err)
			}
			t.ID = id
		}
		return nil
	})
}

// UpdateAnnotations writes back the fields mutated by the odometer, filter
// and purpose stages.
func (r *LedgerRepository) UpdateAnnotations(ledger models.Ledger) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			UPDATE trips
			SET start_odometer = ?, end_odometer = ?, included = ?, purpose = ?
			WHERE id = ?
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip update: %w", err)
		}
		defer stmt.Close()

		for _, t := range ledger {
			if _, err := stmt.Exec(t.StartOdometer, t.EndOdometer, t.Included, t.Purpose, t.ID); err != nil {
				return fmt.Errorf("failed to update trip %d: %w", t.ID, err)
			}
		}
		return nil
	})
}

// GetAll loads the full ledger in chronological order.
func (r *LedgerRepository) GetAll() (models.Ledger, error) {
	query := "SELECT " + tripColumns + " FROM trips ORDER BY start_time, sequence_index"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var ledger models.Ledger
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		ledger = append(ledger, t)
	}
	return ledger, rows.Err()
}

// TripFilter narrows the review API's trip listing.
type TripFilter struct {
	StartTime    int64  `form:"startTime"`
	EndTime      int64  `form:"endTime"`
	IncludedOnly bool   `form:"includedOnly"`
	Purpose      string `form:"purpose"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}

// GetTrips retrieves trips with filtering and pagination.
func (r *LedgerRepository) GetTrips(filter TripFilter) ([]*models.Trip, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.StartTime > 0 {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.IncludedOnly {
		conditions = append(conditions, "included = 1")
	}
	if filter.Purpose != "" {
		conditions = append(conditions, "purpose = ?")
		args = append(args, filter.Purpose)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := "SELECT " + tripColumns + " FROM trips" + where +
		" ORDER BY start_time, sequence_index LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, t)
	}
	return trips, total, rows.Err()
}

// GetByID retrieves a single trip.
func (r *LedgerRepository) GetByID(id int64) (*models.Trip, error) {
	row := r.db.QueryRow("SELECT "+tripColumns+" FROM trips WHERE id = ?", id)

	t, err := scanTripRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Summary aggregates the stored ledger for the review API.
type Summary struct {
	TotalTrips      int64   `json:"total_trips"`
	IncludedTrips   int64   `json:"included_trips"`
	TotalKm         float64 `json:"total_km"`
	IncludedKm      float64 `json:"included_km"`
	FirstTripStart  int64   `json:"first_trip_start,omitempty"`
	LastTripEnd     int64   `json:"last_trip_end,omitempty"`
	OdometerLowest  float64 `json:"odometer_lowest"`
	OdometerHighest float64 `json:"odometer_highest"`
}

// GetSummary computes ledger-wide aggregates.
func (r *LedgerRepository) GetSummary() (*Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(included), 0),
			COALESCE(SUM(distance_km), 0),
			COALESCE(SUM(CASE WHEN included = 1 THEN distance_km ELSE 0 END), 0),
			COALESCE(MIN(start_time), 0),
			COALESCE(MAX(end_time), 0),
			COALESCE(MIN(start_odometer), 0),
			COALESCE(MAX(end_odometer), 0)
		FROM trips
	`

	s := &Summary{}
	err := r.db.QueryRow(query).Scan(
		&s.TotalTrips, &s.IncludedTrips,
		&s.TotalKm, &s.IncludedKm,
		&s.FirstTripStart, &s.LastTripEnd,
		&s.OdometerLowest, &s.OdometerHighest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize trips: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(rows *sql.Rows) (*models.Trip, error) {
	return scanInto(rows)
}

func scanTripRow(row *sql.Row) (*models.Trip, error) {
	t, err := scanInto(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	return t, err
}

func scanInto(s scanner) (*models.Trip, error) {
	var (
		t                 models.Trip
		startTS, endTS    int64
		originID, destID  sql.NullString
		originAddr, dAddr sql.NullString
		activity, purpose sql.NullString
	)

	err := s.Scan(
		&t.ID, &t.SequenceIndex, &startTS, &endTS,
		&originID, &destID, &originAddr, &dAddr,
		&t.DistanceKm, &activity, &t.StartOdometer, &t.EndOdometer,
		&t.Included, &purpose,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip: %w", err)
	}

	t.StartTime = time.Unix(startTS, 0).UTC()
	t.EndTime = time.Unix(endTS, 0).UTC()
	t.OriginPlaceID = originID.String
	t.DestPlaceID = destID.String
	t.OriginAddress = originAddr.String
	t.DestAddress = dAddr.String
	t.ActivityType = activity.String
	t.Purpose = purpose.String

	return &t, nil
}
