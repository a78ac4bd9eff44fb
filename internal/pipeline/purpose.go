package pipeline

import (
	"log"
	"strings"

	"triplog/internal/models"
)

// PurposeRule maps an address token to a purpose label.
type PurposeRule struct {
	Token string
	Label string
}

// AssignPurposes labels each included trip with the first rule whose token
// appears (case-insensitive) in either endpoint address. Declared order
// decides ties; no match leaves the purpose blank for manual completion —
// a normal outcome, not an error.
func AssignPurposes(ledger models.Ledger, rules []PurposeRule) {
	if len(rules) == 0 {
		return
	}

	labeled := 0
	for _, t := range ledger {
		if !t.Included {
			continue
		}
		t.Purpose = matchPurpose(t, rules)
		if t.Purpose != "" {
			labeled++
		}
	}

	log.Printf("[Purpose] Labeled %d trips with %d rules", labeled, len(rules))
}

func matchPurpose(t *models.Trip, rules []PurposeRule) string {
	origin := strings.ToLower(t.OriginAddress)
	dest := strings.ToLower(t.DestAddress)

	for _, rule := range rules {
		token := strings.ToLower(rule.Token)
		if token == "" {
			continue
		}
		if strings.Contains(dest, token) || strings.Contains(origin, token) {
			return rule.Label
		}
	}
	return ""
}
