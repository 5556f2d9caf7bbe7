package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/domain"
	"github.com/lifeos-app/lifeos/internal/metrics"
	"github.com/lifeos-app/lifeos/internal/models"
)

// ImportStore is the persistence surface the importer needs.
type ImportStore interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, p models.Profile) error
	DeleteUserData(ctx context.Context, userID string) error
	FindID(ctx context.Context, kind models.Kind, key models.NaturalKey) (string, bool, error)
	IDExists(ctx context.Context, kind models.Kind, id string) (bool, error)
	ListIDs(ctx context.Context, userID string, kind models.Kind) ([]string, error)
	ApplyBatch(ctx context.Context, userID string, writes []models.Write) error
}

// Importer reconciles snapshot documents into a user's data.
type Importer struct {
	store  ImportStore
	log    *logrus.Logger
	events EventSink
	now    func() time.Time
}

var _ domain.ImportService = (*Importer)(nil)

// NewImporter creates an Importer. events may be nil.
func NewImporter(store ImportStore, log *logrus.Logger, events EventSink) *Importer {
	return &Importer{store: store, log: log, events: events, now: time.Now}
}

// Import writes doc into the user's data in dependency order, committing at
// each checkpoint. Checkpoints committed before a failure stay committed.
func (s *Importer) Import(ctx context.Context, userID string, doc *models.Snapshot, opts models.ImportOptions) (*models.ImportResult, error) {
	mode, err := models.ParseImportMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	opts.Mode = mode

	if doc == nil {
		return nil, models.ErrInvalidSnapshot
	}

	if err := models.CheckSchemaVersion(doc.Schema.Version); err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	if !exists {
		return nil, models.ErrUserNotFound
	}

	start := s.now()
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "mode": mode, "dry_run": opts.DryRun})

	emit(s.events, userID, EventImportStarted, map[string]any{"mode": mode, "dryRun": opts.DryRun})
	log.Info("import started")

	result, err := s.run(ctx, userID, doc, opts)
	elapsed := s.now().Sub(start)

	metrics.PortabilityDuration.WithLabelValues("import").Observe(elapsed.Seconds())

	if err != nil {
		metrics.PortabilityOperations.WithLabelValues("import", "failure").Inc()
		emit(s.events, userID, EventImportFailed, map[string]any{"error": err.Error()})
		log.WithError(err).Error("import failed")

		return nil, err
	}

	result.ImportedAt = start.UTC()
	result.DurationMs = elapsed.Milliseconds()

	metrics.PortabilityOperations.WithLabelValues("import", "success").Inc()
	emit(s.events, userID, EventImportCompleted, result)
	log.WithFields(logrus.Fields{
		"imported":    result.TotalImported,
		"skipped":     result.TotalSkipped,
		"errors":      result.TotalErrors,
		"duration_ms": result.DurationMs,
	}).Info("import completed")

	return result, nil
}

func (s *Importer) run(ctx context.Context, userID string, doc *models.Snapshot, opts models.ImportOptions) (*models.ImportResult, error) {
	if !opts.DryRun && doc.Data.Profile != nil {
		if err := s.store.UpdateProfile(ctx, userID, *doc.Data.Profile); err != nil {
			return nil, fmt.Errorf("import profile: %w", err)
		}
	}

	ic := newImportContext(s.store, userID, opts)

	if opts.Mode == models.ModeReplace && !opts.DryRun {
		if err := s.store.DeleteUserData(ctx, userID); err != nil {
			return nil, fmt.Errorf("import: clearing existing data: %w", err)
		}

		ic.reset()
	}

	for _, cp := range importPlan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, st := range cp.steps {
			if err := st.run(ctx, ic, &doc.Data); err != nil {
				return nil, err
			}
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		writes := len(ic.batch)
		if err := ic.flush(ctx, cp.name); err != nil {
			return nil, err
		}

		emit(s.events, userID, EventImportCheckpoint, map[string]any{"checkpoint": cp.name, "writes": writes})
		s.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"checkpoint": cp.name,
			"writes":     writes,
		}).Debug("checkpoint committed")
	}

	status := models.StatusSuccess
	if opts.DryRun {
		status = models.StatusDryRunComplete
	}

	result := &models.ImportResult{
		Status:        status,
		Mode:          opts.Mode,
		SchemaVersion: doc.Schema.Version,
		Results:       ic.entityResults(),
		IsDryRun:      opts.DryRun,
	}
	result.Tally()

	return result, nil
}

// IsCheckpointFailure reports whether err came from a failed checkpoint commit.
func IsCheckpointFailure(err error) bool {
	var cpErr *models.CheckpointError
	return errors.As(err, &cpErr)
}
