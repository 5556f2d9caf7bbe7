package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/domain"
	"github.com/lifeos-app/lifeos/internal/metrics"
	"github.com/lifeos-app/lifeos/internal/models"
)

// ExportStore reads a user's whole data graph.
type ExportStore interface {
	ExportUserData(ctx context.Context, userID string) (*models.SnapshotData, error)
}

// Exporter produces snapshot documents.
type Exporter struct {
	store  ExportStore
	log    *logrus.Logger
	events EventSink
	now    func() time.Time
}

var _ domain.ExportService = (*Exporter)(nil)

// NewExporter creates an Exporter. events may be nil.
func NewExporter(store ExportStore, log *logrus.Logger, events EventSink) *Exporter {
	return &Exporter{store: store, log: log, events: events, now: time.Now}
}

// Export returns the user's data as a current-version snapshot.
func (s *Exporter) Export(ctx context.Context, userID string) (*models.Snapshot, error) {
	start := s.now()

	data, err := s.store.ExportUserData(ctx, userID)

	metrics.PortabilityDuration.WithLabelValues("export").Observe(s.now().Sub(start).Seconds())

	if err != nil {
		metrics.PortabilityOperations.WithLabelValues("export", "failure").Inc()
		return nil, fmt.Errorf("export: %w", err)
	}

	doc := models.NewSnapshot(*data, start)

	metrics.PortabilityOperations.WithLabelValues("export", "success").Inc()
	emit(s.events, userID, EventExportCompleted, doc.Meta)
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"entities": doc.Meta.TotalEntities,
	}).Info("export completed")

	return doc, nil
}
