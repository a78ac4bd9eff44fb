package models

import "time"

// AddressUnresolved is the placeholder stored for place IDs the geocoding
// service could not resolve. Cached like any other result so the same ID is
// never re-queried.
const AddressUnresolved = "address unresolved"

// Place is a resolved location identity, keyed by the export's opaque place
// ID. Shared by reference between trips; never mutated after resolution.
type Place struct {
	PlaceID    string    `json:"place_id" db:"place_id"`
	Address    string    `json:"address" db:"address"`
	Name       string    `json:"name,omitempty" db:"name"`
	Resolved   bool      `json:"resolved" db:"resolved"`
	ResolvedAt time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Unresolved builds the placeholder Place cached after geocoding gives up.
func Unresolved(placeID string) *Place {
	return &Place{PlaceID: placeID, Address: AddressUnresolved, ResolvedAt: time.Now()}
}
