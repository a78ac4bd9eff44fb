package pipeline

import (
	"context"
	"fmt"
	"log"

	"triplog/internal/config"
	"triplog/internal/geocode"
	"triplog/internal/models"
	"triplog/internal/sheets"
	"triplog/internal/timeline"
)

// LedgerStore persists the ledger between runs.
type LedgerStore interface {
	Replace(ledger models.Ledger) error
	UpdateAnnotations(ledger models.Ledger) error
	GetAll() (models.Ledger, error)
}

// Pipeline wires the stages into one strictly sequential run. Each stage
// fully consumes the previous stage's output; the ledger is the only
// structure mutated across stage boundaries and is never shared
// concurrently.
type Pipeline struct {
	cfg      *config.Config
	resolver *geocode.Resolver
	store    LedgerStore
	writer   sheets.Writer
}

// New assembles a pipeline from its collaborators.
func New(cfg *config.Config, resolver *geocode.Resolver, store LedgerStore, writer sheets.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, resolver: resolver, store: store, writer: writer}
}

// Run executes the full pipeline. A run either completes or fails with an
// error naming the stage; a write failure leaves the annotated ledger
// persisted, so a retry re-runs only assembly and the write.
func (p *Pipeline) Run(ctx context.Context) error {
	var (
		ledger models.Ledger
		err    error
	)

	if p.cfg.SkipSegmentImport {
		log.Printf("[Pipeline] Skipping segment import, reusing persisted ledger")
		ledger, err = p.store.GetAll()
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
	} else {
		ledger, err = p.importSegments(ctx)
		if err != nil {
			return err
		}
		if err := p.store.Replace(ledger); err != nil {
			return fmt.Errorf("persist ledger: %w", err)
		}
	}

	// Odometer runs over the full ledger before any filtering; excluded
	// trips still consumed real distance.
	if err := AssignOdometer(ledger, p.cfg.Anchor); err != nil {
		return fmt.Errorf("assign odometer: %w", err)
	}

	ResetInclusion(ledger)
	ApplyFilters(ledger, FilterConfig{
		DedupeConsecutive: p.cfg.DedupeConsecutive,
		RegionToken:       p.cfg.RegionToken,
		ExcludedLocations: p.cfg.ExcludedLocations,
		ExcludeStart:      p.cfg.ExcludeStart,
		ExcludeEnd:        p.cfg.ExcludeEnd,
		MinTripKm:         p.cfg.MinTripKm,
	})

	AssignPurposes(ledger, PurposeRulesFromConfig(p.cfg.PurposeRules))

	if err := p.store.UpdateAnnotations(ledger); err != nil {
		return fmt.Errorf("persist annotations: %w", err)
	}

	report := AssembleReport(ledger)
	if err := p.writer.WriteReport(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Printf("[Pipeline] Done: %d of %d trips reported, %.2f km total",
		len(report.Rows), len(ledger), report.TotalDistanceKm)
	return nil
}

// importSegments parses the raw export, resolves every referenced place and
// extracts the trip ledger.
func (p *Pipeline) importSegments(ctx context.Context) (models.Ledger, error) {
	normalizer := &timeline.Normalizer{
		StartDate: p.cfg.StartDate,
		EndDate:   p.cfg.EndDate,
	}
	segments, _, err := normalizer.ParseFile(p.cfg.TimelinePath)
	if err != nil {
		return nil, fmt.Errorf("parse segments: %w", err)
	}

	extractor := NewExtractor(p.cfg.VehicleActivityTypes)
	ledger, _ := extractor.Extract(segments)

	if err := p.resolveAddresses(ctx, ledger); err != nil {
		return nil, fmt.Errorf("resolve places: %w", err)
	}
	return ledger, nil
}

// resolveAddresses fills endpoint addresses on every trip. The resolver
// memoizes, so each distinct place ID costs at most one external call.
func (p *Pipeline) resolveAddresses(ctx context.Context, ledger models.Ledger) error {
	for _, t := range ledger {
		origin, err := p.resolver.Resolve(ctx, t.OriginPlaceID)
		if err != nil {
			return err
		}
		dest, err := p.resolver.Resolve(ctx, t.DestPlaceID)
		if err != nil {
			return err
		}
		t.OriginAddress = origin.Address
		t.DestAddress = dest.Address
	}

	log.Printf("[Pipeline] Resolved addresses for %d trips (%d external calls)",
		len(ledger), p.resolver.ExternalCalls())
	return nil
}

// PurposeRulesFromConfig converts the config table to pipeline rules.
func PurposeRulesFromConfig(rules []config.PurposeRule) []PurposeRule {
	out := make([]PurposeRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, PurposeRule{Token: r.Token, Label: r.Label})
	}
	return out
}
