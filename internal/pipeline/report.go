package pipeline

import (
	"math"

	"triplog/internal/models"
)

// AssembleReport projects included trips into logbook rows and totals their
// distance. Pure projection: no filtering or odometer logic happens here, so
// a failed sheet write can be retried from the in-memory ledger.
func AssembleReport(ledger models.Ledger) *models.Report {
	report := &models.Report{}

	item := 0
	for _, t := range ledger {
		if !t.Included {
			continue
		}
		item++
		report.Rows = append(report.Rows, models.ReportRow{
			Item:            item,
			Date:            t.StartTime.Format("2006-01-02"),
			StartTime:       t.StartTime.Format("15:04:05"),
			EndTime:         t.EndTime.Format("15:04:05"),
			StartingPoint:   t.OriginAddress,
			Destination:     t.DestAddress,
			Purpose:         t.Purpose,
			DistanceKm:      round2(t.DistanceKm),
			StartOdometer:   math.Round(t.StartOdometer),
			EndOdometer:     math.Round(t.EndOdometer),
			DurationMinutes: t.DurationMinutes(),
			ActivityType:    t.ActivityType,
		})
		report.TotalDistanceKm += t.DistanceKm
	}
	report.TotalDistanceKm = round2(report.TotalDistanceKm)

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
