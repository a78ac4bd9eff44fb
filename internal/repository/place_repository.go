package repository

import (
	"database/sql"
	"fmt"

	"triplog/internal/models"
)

// PlaceRepository is the sqlite-backed geocode cache. Persisting it across
// runs keeps paid external calls to one per distinct place ID, ever.
type PlaceRepository struct {
	db *sql.DB
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// Get returns the cached place for an ID, or nil on a miss.
func (r *PlaceRepository) Get(placeID string) (*models.Place, error) {
	query := `
		SELECT place_id, address, name, resolved, resolved_at
		FROM places
		WHERE place_id = ?
	`

	place := &models.Place{}
	err := r.db.QueryRow(query, placeID).Scan(
		&place.PlaceID,
		&place.Address,
		&place.Name,
		&place.Resolved,
		&place.ResolvedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}

	return place, nil
}

// Put stores a resolution result, unresolved placeholders included.
func (r *PlaceRepository) Put(place *models.Place) error {
	query := `
		INSERT INTO places (place_id, address, name, resolved, resolved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(place_id) DO UPDATE SET
			address = excluded.address,
			name = excluded.name,
			resolved = excluded.resolved,
			resolved_at = excluded.resolved_at
	`

	_, err := r.db.Exec(query,
		place.PlaceID,
		place.Address,
		place.Name,
		place.Resolved,
		place.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store place: %w", err)
	}
	return nil
}

// Count returns the number of cached places.
func (r *PlaceRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}
