package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifeos-app/lifeos/internal/metrics"
	"github.com/lifeos-app/lifeos/internal/models"
)

// maxErrorDetails caps the per-kind error messages kept in a result.
const maxErrorDetails = 100

// importContext is the state of one Import call. It is never shared between calls.
type importContext struct {
	store  ImportStore
	userID string
	opts   models.ImportOptions

	// idMaps translates document IDs to target IDs per kind.
	idMaps map[models.Kind]map[string]string
	// seen maps natural keys already reconciled in this document to their target ID.
	seen map[models.Kind]map[string]string
	// pending holds target IDs claimed by this import but possibly not yet written.
	pending map[models.Kind]map[string]bool
	// stored caches the IDs a document may reference without carrying them.
	stored map[models.Kind]map[string]bool
	// owned caches the user's own IDs; only consulted by a replace dry run.
	owned map[models.Kind]map[string]bool

	batch   []models.Write
	results map[models.Kind]*models.EntityResult
	newID   func() string
}

func newImportContext(store ImportStore, userID string, opts models.ImportOptions) *importContext {
	ic := &importContext{
		store:   store,
		userID:  userID,
		opts:    opts,
		results: make(map[models.Kind]*models.EntityResult, len(models.Kinds)),
		newID:   func() string { return uuid.NewString() },
	}

	for _, k := range models.Kinds {
		ic.results[k] = &models.EntityResult{}
	}

	ic.reset()

	return ic
}

// reset drops every cached ID and pending write.
func (ic *importContext) reset() {
	ic.idMaps = map[models.Kind]map[string]string{}
	ic.seen = map[models.Kind]map[string]string{}
	ic.pending = map[models.Kind]map[string]bool{}
	ic.stored = map[models.Kind]map[string]bool{}
	ic.owned = map[models.Kind]map[string]bool{}
	ic.batch = nil
}

func (ic *importContext) replace() bool { return ic.opts.Mode == models.ModeReplace }

// ignoresStored reports whether the user's existing rows of kind are treated
// as gone. Replace deletes them; a replace dry run pretends it did.
func (ic *importContext) ignoresStored(kind models.Kind) bool {
	return ic.replace() && !kind.IsGlobal()
}

func inner[V any](m map[models.Kind]map[string]V, kind models.Kind) map[string]V {
	sub, ok := m[kind]
	if !ok {
		sub = map[string]V{}
		m[kind] = sub
	}

	return sub
}

func (ic *importContext) mapID(kind models.Kind, docID, target string) {
	if docID == "" {
		return
	}

	inner(ic.idMaps, kind)[docID] = target
}

func (ic *importContext) listIDs(ctx context.Context, kind models.Kind) (map[string]bool, error) {
	ids, err := ic.store.ListIDs(ctx, ic.userID, kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

// storedIDs returns the existing IDs of kind a reference may resolve to.
func (ic *importContext) storedIDs(ctx context.Context, kind models.Kind) (map[string]bool, error) {
	if set, ok := ic.stored[kind]; ok {
		return set, nil
	}

	set := map[string]bool{}

	if !ic.ignoresStored(kind) {
		var err error
		if set, err = ic.listIDs(ctx, kind); err != nil {
			return nil, err
		}
	}

	ic.stored[kind] = set

	return set, nil
}

// resolve translates a document ID of kind to its target ID.
func (ic *importContext) resolve(ctx context.Context, kind models.Kind, docID string) (string, bool, error) {
	if docID == "" {
		return "", false, nil
	}

	if target, ok := ic.idMaps[kind][docID]; ok {
		return target, true, nil
	}

	set, err := ic.storedIDs(ctx, kind)
	if err != nil {
		return "", false, err
	}

	return docID, set[docID], nil
}

// optional resolves *ref in place, clearing it when it cannot be resolved.
func (ic *importContext) optional(ctx context.Context, kind models.Kind, ref **string) error {
	if *ref == nil {
		return nil
	}

	target, ok, err := ic.resolve(ctx, kind, **ref)
	if err != nil {
		return err
	}

	if !ok {
		*ref = nil
		return nil
	}

	*ref = &target

	return nil
}

// required resolves *ref in place. ok is false when the row must be skipped.
func (ic *importContext) required(ctx context.Context, kind models.Kind, ref *string) (bool, error) {
	target, ok, err := ic.resolve(ctx, kind, *ref)
	if err != nil || !ok {
		return false, err
	}

	*ref = target

	return true, nil
}

// requiredRef is required for a pointer field. The pointer is replaced, not
// written through, so the document row is left untouched.
func (ic *importContext) requiredRef(ctx context.Context, kind models.Kind, ref **string) (bool, error) {
	if *ref == nil {
		return false, nil
	}

	target := **ref

	ok, err := ic.required(ctx, kind, &target)
	if err != nil || !ok {
		return false, err
	}

	*ref = &target

	return true, nil
}

// taken reports whether id cannot be used for a new row of kind.
func (ic *importContext) taken(ctx context.Context, kind models.Kind, id string) (bool, error) {
	if ic.pending[kind][id] {
		return true, nil
	}

	if ic.opts.DryRun && ic.ignoresStored(kind) {
		own, ok := ic.owned[kind]
		if !ok {
			var err error
			if own, err = ic.listIDs(ctx, kind); err != nil {
				return false, err
			}

			ic.owned[kind] = own
		}

		if own[id] {
			return false, nil
		}
	}

	exists, err := ic.store.IDExists(ctx, kind, id)
	if err != nil {
		return false, fmt.Errorf("checking %s id: %w", kind, err)
	}

	return exists, nil
}

// claimID picks the target ID for a new row: the document ID when it is a
// valid UUID that nothing else holds, otherwise a fresh one.
func (ic *importContext) claimID(ctx context.Context, kind models.Kind, docID string) (string, error) {
	target := docID

	if _, err := uuid.Parse(docID); err != nil {
		target = ic.newID()
	} else {
		taken, err := ic.taken(ctx, kind, docID)
		if err != nil {
			return "", err
		}

		if taken {
			target = ic.newID()
		}
	}

	inner(ic.pending, kind)[target] = true

	return target, nil
}

func (ic *importContext) queue(w models.Write) {
	ic.batch = append(ic.batch, w)
}

// flush commits the pending batch as one checkpoint. A dry run discards it.
func (ic *importContext) flush(ctx context.Context, checkpoint string) error {
	batch := ic.batch
	ic.batch = nil

	if ic.opts.DryRun {
		return nil
	}

	if err := ic.store.ApplyBatch(ctx, ic.userID, batch); err != nil {
		return &models.CheckpointError{Checkpoint: checkpoint, Err: err}
	}

	return nil
}

// Row outcomes.
const (
	outcomeImported = "imported"
	outcomeSkipped  = "skipped"
	outcomeError    = "error"
)

func (ic *importContext) count(kind models.Kind, outcome string) {
	r := ic.results[kind]

	switch outcome {
	case outcomeImported:
		r.Imported++
	case outcomeSkipped:
		r.Skipped++
	}

	metrics.ImportRows.WithLabelValues(string(kind), outcome).Inc()
}

func (ic *importContext) rowError(kind models.Kind, index int, err error) {
	r := ic.results[kind]
	r.Errors++

	if len(r.ErrorDetails) < maxErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf("%s[%d]: %v", kind, index, err))
	}

	metrics.ImportRows.WithLabelValues(string(kind), outcomeError).Inc()
}

func (ic *importContext) entityResults() map[models.Kind]models.EntityResult {
	out := make(map[models.Kind]models.EntityResult, len(ic.results))
	for k, r := range ic.results {
		out[k] = *r
	}

	return out
}
