package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"triplog/internal/models"
)

const dateLayout = "2006-01-02"

// PurposeRule maps an address token to a trip purpose label. Rules are
// matched in declared order; first match wins.
type PurposeRule struct {
	Token string
	Label string
}

// Config holds the full configuration for a pipeline run and the review API.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Raw export input
	TimelinePath      string
	SkipSegmentImport bool

	// Inclusive run window; segments starting outside it are ignored.
	StartDate time.Time
	EndDate   time.Time

	// Odometer anchor: the single known (date, reading) pair.
	Anchor models.OdometerAnchor

	// Filter policy. Zero values disable the corresponding rule.
	RegionToken       string
	ExcludedLocations []string
	ExcludeStart      time.Time
	ExcludeEnd        time.Time
	MinTripKm         float64
	DedupeConsecutive bool

	PurposeRules []PurposeRule

	// Activity types treated as vehicle travel.
	VehicleActivityTypes []string

	// Geocoding collaborator
	MapsAPIKey     string
	GeocodeRetries int
	GeocodeBackoff time.Duration

	// Sheet-writer collaborator; CSVPath is the fallback sink when no
	// spreadsheet is configured.
	SpreadsheetID   string
	SheetName       string
	CredentialsPath string
	CSVPath         string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 envOr("PORT", ":8080"),
		DBPath:               envOr("DB_PATH", "./data/triplog.db"),
		JWTSecret:            envOr("JWT_SECRET", "your-secret-key-change-in-production"),
		TimelinePath:         os.Getenv("TIMELINE_JSON_PATH"),
		SkipSegmentImport:    envBool("SKIP_SEGMENT_IMPORT"),
		RegionToken:          os.Getenv("REGION_TOKEN"),
		ExcludedLocations:    envList("EXCLUDED_LOCATIONS"),
		DedupeConsecutive:    !envBool("DISABLE_DEDUPE"),
		MapsAPIKey:           os.Getenv("MAPS_API_KEY"),
		GeocodeRetries:       3,
		GeocodeBackoff:       time.Second,
		SpreadsheetID:        os.Getenv("SPREADSHEET_ID"),
		SheetName:            envOr("SHEET_NAME", "Final Report"),
		CredentialsPath:      envOr("SHEETS_CREDENTIALS_PATH", "credentials.json"),
		CSVPath:              envOr("CSV_PATH", "./report.csv"),
		VehicleActivityTypes: envList("VEHICLE_ACTIVITY_TYPES"),
	}

	if len(cfg.VehicleActivityTypes) == 0 {
		cfg.VehicleActivityTypes = []string{models.ActivityPassengerVehicle}
	}

	var err error
	if cfg.StartDate, err = envDate("START_DATE"); err != nil {
		return nil, err
	}
	if cfg.EndDate, err = envDate("END_DATE"); err != nil {
		return nil, err
	}
	if cfg.ExcludeStart, err = envDate("EXCLUDE_START_DATE"); err != nil {
		return nil, err
	}
	if cfg.ExcludeEnd, err = envDate("EXCLUDE_END_DATE"); err != nil {
		return nil, err
	}
	if cfg.Anchor.Date, err = envDate("ODOMETER_END_DATE"); err != nil {
		return nil, err
	}

	if v := os.Getenv("ODOMETER_END_READING"); v != "" {
		cfg.Anchor.Reading, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ODOMETER_END_READING %q: %w", v, err)
		}
	}
	if v := os.Getenv("MIN_TRIP_KM"); v != "" {
		cfg.MinTripKm, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_TRIP_KM %q: %w", v, err)
		}
	}

	cfg.PurposeRules, err = ParsePurposeRules(os.Getenv("PURPOSE_RULES"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParsePurposeRules parses an ordered "token=label;token=label" table.
func ParsePurposeRules(s string) ([]PurposeRule, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var rules []PurposeRule
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, label, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(token) == "" {
			return nil, fmt.Errorf("invalid purpose rule %q, want token=label", pair)
		}
		rules = append(rules, PurposeRule{
			Token: strings.TrimSpace(token),
			Label: strings.TrimSpace(label),
		})
	}
	return rules, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func envList(key string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envDate(key string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD: %w", key, v, err)
	}
	return t, nil
}
