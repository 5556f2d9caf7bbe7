package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifeos-app/lifeos/internal/models"
)

// recordPtr constrains P to a pointer to T that implements models.Record.
type recordPtr[T any] interface {
	*T
	models.Record
}

// step reconciles one collection of a snapshot.
type step[T any, P recordPtr[T]] struct {
	kind models.Kind
	rows func(d *models.SnapshotData) []T
	// remap rewrites document references to target IDs. ok is false when a
	// required reference cannot be resolved and the row must be skipped.
	remap func(ctx context.Context, ic *importContext, r P) (ok bool, err error)
	// rekey lets replace mode move an existing shared row to the document's ID.
	rekey bool
}

// runner is a type-erased step.
type runner interface {
	stepKind() models.Kind
	run(ctx context.Context, ic *importContext, d *models.SnapshotData) error
	validateRows(d *models.SnapshotData, check func(models.Kind, int, models.Record))
}

func (s step[T, P]) stepKind() models.Kind { return s.kind }

func (s step[T, P]) run(ctx context.Context, ic *importContext, d *models.SnapshotData) error {
	for i, row := range s.rows(d) {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := P(new(T))
		*rec = row

		var remap func(context.Context, *importContext) (bool, error)
		if s.remap != nil {
			remap = func(ctx context.Context, ic *importContext) (bool, error) { return s.remap(ctx, ic, rec) }
		}

		if err := ic.reconcile(ctx, i, rec, remap, s.rekey); err != nil {
			return fmt.Errorf("%s[%d]: %w", s.kind, i, err)
		}
	}

	return nil
}

// reconcile decides what happens to one document row and queues the write.
// A returned error is fatal for the import; row problems are tallied.
func (ic *importContext) reconcile(ctx context.Context, index int, rec models.Record,
	remap func(context.Context, *importContext) (bool, error), rekey bool,
) error {
	kind := rec.Kind()
	docID := rec.RecordID()

	rec.Normalize()

	if err := rec.Validate(); err != nil {
		ic.rowError(kind, index, err)
		return nil
	}

	if remap != nil {
		ok, err := remap(ctx, ic)
		if err != nil {
			return err
		}

		if !ok {
			ic.count(kind, outcomeSkipped)
			return nil
		}
	}

	key, keyed := rec.NaturalKey(ic.userID)
	if !keyed {
		target := ic.newID()
		inner(ic.pending, kind)[target] = true
		ic.mapID(kind, docID, target)
		ic.insert(rec, target)

		return nil
	}

	keyStr := key.String()
	if target, dup := ic.seen[kind][keyStr]; dup {
		ic.mapID(kind, docID, target)
		ic.count(kind, outcomeSkipped)

		return nil
	}

	existing, found, err := ic.findExisting(ctx, kind, key)
	if err != nil {
		return err
	}

	if !found {
		target, err := ic.claimID(ctx, kind, docID)
		if err != nil {
			return err
		}

		inner(ic.seen, kind)[keyStr] = target
		ic.mapID(kind, docID, target)
		ic.insert(rec, target)

		return nil
	}

	if !ic.replace() {
		inner(ic.seen, kind)[keyStr] = existing
		ic.mapID(kind, docID, existing)
		ic.count(kind, outcomeSkipped)

		return nil
	}

	target := existing

	if rekey && docID != existing {
		moved, err := ic.rekey(ctx, kind, existing, docID)
		if err != nil {
			return err
		}

		if moved {
			target = docID
		}
	}

	inner(ic.seen, kind)[keyStr] = target
	ic.mapID(kind, docID, target)

	rec.SetRecordID(target)
	ic.queue(models.Write{Op: models.OpUpdate, Kind: kind, ID: target, Record: rec})
	ic.count(kind, outcomeImported)

	return nil
}

// findExisting looks up a stored row by natural key. A replace import
// ignores the user's own rows since they are deleted first.
func (ic *importContext) findExisting(ctx context.Context, kind models.Kind, key models.NaturalKey) (string, bool, error) {
	if ic.ignoresStored(kind) {
		return "", false, nil
	}

	id, found, err := ic.store.FindID(ctx, kind, key)
	if err != nil {
		return "", false, fmt.Errorf("looking up %s: %w", kind, err)
	}

	return id, found, nil
}

// rekey moves an existing shared row from oldID to newID when newID is a
// free UUID. References follow through ON UPDATE CASCADE.
func (ic *importContext) rekey(ctx context.Context, kind models.Kind, oldID, newID string) (bool, error) {
	if _, err := uuid.Parse(newID); err != nil {
		return false, nil
	}

	taken, err := ic.taken(ctx, kind, newID)
	if err != nil || taken {
		return false, err
	}

	ic.queue(models.Write{Op: models.OpRekey, Kind: kind, ID: newID, OldID: oldID})
	inner(ic.pending, kind)[newID] = true

	if set, ok := ic.stored[kind]; ok {
		delete(set, oldID)
		set[newID] = true
	}

	// Rows that referenced the old ID now reference the new one.
	for doc, target := range ic.idMaps[kind] {
		if target == oldID {
			ic.idMaps[kind][doc] = newID
		}
	}

	for k, target := range ic.seen[kind] {
		if target == oldID {
			ic.seen[kind][k] = newID
		}
	}

	return true, nil
}

func (ic *importContext) insert(rec models.Record, target string) {
	rec.SetRecordID(target)
	ic.queue(models.Write{Op: models.OpInsert, Kind: rec.Kind(), ID: target, Record: rec})
	ic.count(rec.Kind(), outcomeImported)
}
