// Package domain defines the canonical service interfaces shared across API
// layers (REST handlers, event socket). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/lifeos-app/lifeos/internal/models"
)

// ExportService produces portable snapshots of a user's data.
type ExportService interface {
	Export(ctx context.Context, userID string) (*models.Snapshot, error)
}

// ImportService reconciles snapshot documents into a user's data.
type ImportService interface {
	Import(ctx context.Context, userID string, doc *models.Snapshot, opts models.ImportOptions) (*models.ImportResult, error)
	// Validate checks a document without touching the database.
	Validate(doc *models.Snapshot) *models.ValidationReport
}
