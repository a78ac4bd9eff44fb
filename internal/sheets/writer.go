// Package sheets persists the assembled logbook through the external
// sheet-writer collaborator. Writers receive report rows only, never the
// ledger; a failed write can be retried without re-running extraction.
package sheets

import (
	"context"

	"triplog/internal/models"
)

// Writer is the sheet-writer collaborator contract.
type Writer interface {
	WriteReport(ctx context.Context, report *models.Report) error
}
