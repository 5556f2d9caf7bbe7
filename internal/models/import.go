package models

import (
	"fmt"
	"strings"
	"time"
)

// ImportMode selects how a document is reconciled against existing data.
type ImportMode string

// Import modes.
const (
	// ModeReplace deletes the user's data first; the document becomes the user's graph.
	ModeReplace ImportMode = "replace"
	// ModeMerge keeps existing rows and adds only rows not already present.
	ModeMerge ImportMode = "merge"
)

// ParseImportMode parses s case-insensitively. An empty string means replace.
func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeReplace):
		return ModeReplace, nil
	case string(ModeMerge):
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("%w: %q (want replace or merge)", ErrInvalidMode, s)
	}
}

// Import result statuses.
const (
	StatusSuccess        = "success"
	StatusDryRunComplete = "dry_run_complete"
)

// ImportOptions controls the behaviour of an import operation.
type ImportOptions struct {
	Mode ImportMode `json:"mode"`
	// DryRun performs every lookup and decision but writes nothing.
	DryRun bool `json:"dryRun"`
}

// ImportRequest is the JSON request body accepted by the import endpoint.
type ImportRequest struct {
	Mode   string   `json:"mode"`
	DryRun bool     `json:"dryRun"`
	Data   Snapshot `json:"data"`
}

// EntityResult counts the outcome of one entity kind.
type EntityResult struct {
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
}

// ImportResult summarises the outcome of an import operation.
type ImportResult struct {
	Status        string                `json:"status"`
	Mode          ImportMode            `json:"mode"`
	ImportedAt    time.Time             `json:"importedAt"`
	SchemaVersion string                `json:"schemaVersion"`
	Results       map[Kind]EntityResult `json:"results"`
	TotalImported int                   `json:"totalImported"`
	TotalSkipped  int                   `json:"totalSkipped"`
	TotalErrors   int                   `json:"totalErrors"`
	DurationMs    int64                 `json:"durationMs"`
	IsDryRun      bool                  `json:"isDryRun"`
}

// Tally recomputes the totals from Results.
func (r *ImportResult) Tally() {
	r.TotalImported, r.TotalSkipped, r.TotalErrors = 0, 0, 0

	for _, er := range r.Results {
		r.TotalImported += er.Imported
		r.TotalSkipped += er.Skipped
		r.TotalErrors += er.Errors
	}
}

// WriteOp is the kind of change a Write applies.
type WriteOp int

// Write operations.
const (
	// OpInsert creates Record with ID.
	OpInsert WriteOp = iota
	// OpUpdate overwrites the row with ID in place.
	OpUpdate
	// OpRekey changes a row's ID from OldID to ID. Referencing rows follow.
	OpRekey
)

func (o WriteOp) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpRekey:
		return "rekey"
	default:
		return fmt.Sprintf("WriteOp(%d)", int(o))
	}
}

// Write is one pending change in a checkpoint batch.
type Write struct {
	Op     WriteOp
	Kind   Kind
	ID     string
	OldID  string
	Record Record
}
