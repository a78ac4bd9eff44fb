package service

import (
	"triplog/internal/config"
	"triplog/internal/models"
	"triplog/internal/pipeline"
	"triplog/internal/repository"
)

// LedgerService handles business logic for the review API.
type LedgerService struct {
	repo *repository.LedgerRepository
	cfg  *config.Config
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repo *repository.LedgerRepository, cfg *config.Config) *LedgerService {
	return &LedgerService{repo: repo, cfg: cfg}
}

// GetTrips retrieves trips with filtering and pagination.
func (s *LedgerService) GetTrips(filter repository.TripFilter) ([]*models.Trip, int64, error) {
	return s.repo.GetTrips(filter)
}

// GetTripByID retrieves a single trip by ID.
func (s *LedgerService) GetTripByID(id int64) (*models.Trip, error) {
	return s.repo.GetByID(id)
}

// GetReport assembles the logbook from the persisted ledger.
func (s *LedgerService) GetReport() (*models.Report, error) {
	ledger, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	return pipeline.AssembleReport(ledger), nil
}

// GetSummary computes ledger-wide aggregates.
func (s *LedgerService) GetSummary() (*repository.Summary, error) {
	return s.repo.GetSummary()
}

// Refilter re-runs the filter and purpose stages over the persisted ledger
// with the current configuration. Odometer values are untouched; they were
// assigned over the full ledger and stay valid across filter changes.
func (s *LedgerService) Refilter() (pipeline.FilterStats, error) {
	ledger, err := s.repo.GetAll()
	if err != nil {
		return pipeline.FilterStats{}, err
	}

	pipeline.ResetInclusion(ledger)
	stats := pipeline.ApplyFilters(ledger, pipeline.FilterConfig{
		DedupeConsecutive: s.cfg.DedupeConsecutive,
		RegionToken:       s.cfg.RegionToken,
		ExcludedLocations: s.cfg.ExcludedLocations,
		ExcludeStart:      s.cfg.ExcludeStart,
		ExcludeEnd:        s.cfg.ExcludeEnd,
		MinTripKm:         s.cfg.MinTripKm,
	})
	pipeline.AssignPurposes(ledger, pipeline.PurposeRulesFromConfig(s.cfg.PurposeRules))

	if err := s.repo.UpdateAnnotations(ledger); err != nil {
		return pipeline.FilterStats{}, err
	}
	return stats, nil
}
