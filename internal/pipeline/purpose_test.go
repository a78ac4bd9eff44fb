package pipeline

import (
	"testing"

	"triplog/internal/models"
)

func TestAssignPurposesFirstMatchWins(t *testing.T) {
	trip := filterTrip("2025-05-01 08:00", "12 Main St, Kincardine, ON", "9 Oak Ave, Port Elgin, ON", 40)
	ledger := models.Ledger{trip}

	// Both tokens match; declared order decides.
	rules := []PurposeRule{
		{Token: "port elgin", Label: "Meeting with Customers"},
		{Token: "kincardine", Label: "Travel to Customer Site"},
	}
	AssignPurposes(ledger, rules)

	if trip.Purpose != "Meeting with Customers" {
		t.Errorf("first rule should win, got %q", trip.Purpose)
	}
}

func TestAssignPurposesMatchesEitherEndpoint(t *testing.T) {
	outbound := filterTrip("2025-05-01 08:00", "Home, Guelph, ON", "Plant 4, Tiverton, ON", 60)
	inbound := filterTrip("2025-05-01 17:00", "Plant 4, Tiverton, ON", "Home, Guelph, ON", 60)
	ledger := models.Ledger{outbound, inbound}

	AssignPurposes(ledger, []PurposeRule{{Token: "tiverton", Label: "Travel to Customer Site"}})

	if outbound.Purpose != "Travel to Customer Site" {
		t.Errorf("destination match failed: %q", outbound.Purpose)
	}
	if inbound.Purpose != "Travel to Customer Site" {
		t.Errorf("origin match failed: %q", inbound.Purpose)
	}
}

func TestAssignPurposesNoMatchLeavesBlank(t *testing.T) {
	trip := filterTrip("2025-05-01 08:00", "A", "B", 10)
	ledger := models.Ledger{trip}

	AssignPurposes(ledger, []PurposeRule{{Token: "tiverton", Label: "Travel to Customer Site"}})

	if trip.Purpose != "" {
		t.Errorf("no match should leave purpose blank, got %q", trip.Purpose)
	}
}

func TestAssignPurposesSkipsExcludedTrips(t *testing.T) {
	trip := filterTrip("2025-05-01 08:00", "Plant 4, Tiverton, ON", "B", 10)
	trip.Included = false
	ledger := models.Ledger{trip}

	AssignPurposes(ledger, []PurposeRule{{Token: "tiverton", Label: "Travel to Customer Site"}})

	if trip.Purpose != "" {
		t.Errorf("excluded trips are not labeled, got %q", trip.Purpose)
	}
}
