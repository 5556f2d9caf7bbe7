package service

import (
	"fmt"

	"github.com/lifeos-app/lifeos/internal/models"
)

// Validate checks doc without touching the database: schema compatibility,
// meta consistency and per-row validation. Dangling references are not
// reported since they depend on the target's stored rows.
func (s *Importer) Validate(doc *models.Snapshot) *models.ValidationReport {
	if doc == nil {
		return &models.ValidationReport{Problems: []string{models.ErrInvalidSnapshot.Error()}}
	}

	report := &models.ValidationReport{
		SchemaVersion: doc.Schema.Version,
		EntityCounts:  doc.Data.Counts(),
		Compatible:    true,
	}

	if err := models.CheckSchemaVersion(doc.Schema.Version); err != nil {
		report.Compatible = false
		report.Problems = append(report.Problems, err.Error())
	}

	report.Problems = append(report.Problems, doc.VerifyMeta()...)

	for _, rp := range rowProblems(&doc.Data) {
		if len(report.Problems) >= maxErrorDetails {
			break
		}

		report.Problems = append(report.Problems, rp)
	}

	report.Valid = len(report.Problems) == 0

	return report
}

// rowProblems normalizes and validates a copy of every row.
func rowProblems(d *models.SnapshotData) []string {
	var problems []string

	check := func(kind models.Kind, i int, rec models.Record) {
		rec.Normalize()

		if err := rec.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s[%d]: %v", kind, i, err))
		}
	}

	for _, cp := range importPlan {
		for _, st := range cp.steps {
			st.validateRows(d, check)
		}
	}

	return problems
}

func (s step[T, P]) validateRows(d *models.SnapshotData, check func(models.Kind, int, models.Record)) {
	for i, row := range s.rows(d) {
		rec := P(new(T))
		*rec = row
		check(s.kind, i, rec)
	}
}
