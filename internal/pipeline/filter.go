package pipeline

import (
	"log"
	"strings"
	"time"

	"triplog/internal/models"
)

// FilterConfig carries the filter rules. Zero values disable a rule, making
// it a pass-through.
type FilterConfig struct {
	// DedupeConsecutive drops a trip sharing its origin with the previous
	// kept trip — a duplicate sensor event, not real movement.
	DedupeConsecutive bool

	// RegionToken keeps only trips with an endpoint address containing the
	// token (case-insensitive). Empty means all regions pass.
	RegionToken string

	// ExcludedLocations drops trips with an endpoint address matching any
	// entry.
	ExcludedLocations []string

	// ExcludeStart/ExcludeEnd drop trips within the date window (both must
	// be set).
	ExcludeStart time.Time
	ExcludeEnd   time.Time

	// MinTripKm drops trips below the distance threshold.
	MinTripKm float64
}

// FilterStats counts exclusions per rule.
type FilterStats struct {
	Duplicates   int
	OutOfRegion  int
	Excluded     int
	DateExcluded int
	BelowMinimum int
	KeptTrips    int
}

// ApplyFilters marks excluded trips rather than deleting them, so the
// odometer values assigned earlier stay contiguous across the full ledger.
// Applying the same config twice yields the same included set.
func ApplyFilters(ledger models.Ledger, cfg FilterConfig) FilterStats {
	var stats FilterStats

	if cfg.DedupeConsecutive {
		prevKey := ""
		for _, t := range ledger {
			if !t.Included {
				continue
			}
			key := tripOriginKey(t)
			if key != "" && key == prevKey {
				t.Included = false
				stats.Duplicates++
				continue
			}
			prevKey = key
		}
	}

	if cfg.RegionToken != "" {
		token := strings.ToLower(cfg.RegionToken)
		for _, t := range ledger {
			if !t.Included {
				continue
			}
			if !addressContains(t.OriginAddress, token) && !addressContains(t.DestAddress, token) {
				t.Included = false
				stats.OutOfRegion++
			}
		}
	}

	if len(cfg.ExcludedLocations) > 0 {
		for _, t := range ledger {
			if !t.Included {
				continue
			}
			for _, loc := range cfg.ExcludedLocations {
				needle := strings.ToLower(loc)
				if addressContains(t.OriginAddress, needle) || addressContains(t.DestAddress, needle) {
					t.Included = false
					stats.Excluded++
					break
				}
			}
		}
	}

	if !cfg.ExcludeStart.IsZero() && !cfg.ExcludeEnd.IsZero() {
		end := cfg.ExcludeEnd.AddDate(0, 0, 1)
		for _, t := range ledger {
			if !t.Included {
				continue
			}
			if !t.StartTime.Before(cfg.ExcludeStart) && t.StartTime.Before(end) {
				t.Included = false
				stats.DateExcluded++
			}
		}
	}

	if cfg.MinTripKm > 0 {
		for _, t := range ledger {
			if !t.Included {
				continue
			}
			if t.DistanceKm < cfg.MinTripKm {
				t.Included = false
				stats.BelowMinimum++
			}
		}
	}

	for _, t := range ledger {
		if t.Included {
			stats.KeptTrips++
		}
	}

	log.Printf("[Filter] Kept %d of %d trips (dropped: %d duplicates, %d out of region, %d excluded, %d date-excluded, %d below %.1f km)",
		stats.KeptTrips, len(ledger), stats.Duplicates, stats.OutOfRegion,
		stats.Excluded, stats.DateExcluded, stats.BelowMinimum, cfg.MinTripKm)

	return stats
}

// ResetInclusion re-admits every trip before a filter re-run.
func ResetInclusion(ledger models.Ledger) {
	for _, t := range ledger {
		t.Included = true
	}
}

// tripOriginKey identifies a trip's origin for duplicate detection: the
// place ID when known, otherwise the normalized address.
func tripOriginKey(t *models.Trip) string {
	if t.OriginPlaceID != "" {
		return t.OriginPlaceID
	}
	addr := strings.ToLower(strings.TrimSpace(t.OriginAddress))
	if addr == "" || addr == models.AddressUnresolved {
		return ""
	}
	return addr
}

func addressContains(addr, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(addr), lowerNeedle)
}
