package service

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/lifeos-app/lifeos/internal/models"
)

type fakeRow struct {
	owner string
	rec   models.Record
}

// fakeStore is an in-memory ImportStore and ExportStore. Batches are atomic.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*models.Profile
	rows  map[models.Kind][]fakeRow

	applyCalls  int
	deleteCalls int
	// failAt makes the nth ApplyBatch call fail. Zero never fails.
	failAt int
	// afterApply runs after every successful ApplyBatch call.
	afterApply func(call int)
}

func newFakeStore(users ...string) *fakeStore {
	f := &fakeStore{
		users: map[string]*models.Profile{},
		rows:  map[models.Kind][]fakeRow{},
	}

	for _, u := range users {
		f.users[u] = &models.Profile{}
	}

	return f
}

func cloneRecord(rec models.Record) models.Record {
	v := reflect.ValueOf(rec).Elem()
	c := reflect.New(v.Type())
	c.Elem().Set(v)

	return c.Interface().(models.Record)
}

// seed stores rec directly. owner is ignored for shared kinds.
func (f *fakeStore) seed(owner string, rec models.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec.Kind().IsGlobal() {
		owner = ""
	}

	f.rows[rec.Kind()] = append(f.rows[rec.Kind()], fakeRow{owner: owner, rec: cloneRecord(rec)})
}

func (f *fakeStore) visible(kind models.Kind, userID string) []fakeRow {
	var out []fakeRow

	for _, r := range f.rows[kind] {
		if kind.IsGlobal() || r.owner == userID {
			out = append(out, r)
		}
	}

	return out
}

func (f *fakeStore) count(userID string, kind models.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.visible(kind, userID))
}

// get returns the stored record of kind with id, or nil.
func (f *fakeStore) get(kind models.Kind, id string) models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows[kind] {
		if r.rec.RecordID() == id {
			return r.rec
		}
	}

	return nil
}

// only returns the single visible record of kind, or nil.
func (f *fakeStore) only(userID string, kind models.Kind) models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.visible(kind, userID)
	if len(rows) != 1 {
		return nil
	}

	return rows[0].rec
}

func (f *fakeStore) UserExists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.users[userID]

	return ok, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, userID string, p models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userID]; !ok {
		return models.ErrUserNotFound
	}

	f.users[userID] = &p

	return nil
}

func (f *fakeStore) DeleteUserData(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls++

	for kind, rows := range f.rows {
		if kind.IsGlobal() {
			continue
		}

		kept := rows[:0:0]
		for _, r := range rows {
			if r.owner != userID {
				kept = append(kept, r)
			}
		}

		f.rows[kind] = kept
	}

	return nil
}

func (f *fakeStore) FindID(_ context.Context, kind models.Kind, key models.NaturalKey) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := key.String()

	var ids []string

	for _, r := range f.rows[kind] {
		k, ok := r.rec.NaturalKey(r.owner)
		if ok && k.String() == want {
			ids = append(ids, r.rec.RecordID())
		}
	}

	if len(ids) == 0 {
		return "", false, nil
	}

	sort.Strings(ids)

	return ids[0], true, nil
}

func (f *fakeStore) IDExists(_ context.Context, kind models.Kind, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows[kind] {
		if r.rec.RecordID() == id {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeStore) ListIDs(_ context.Context, userID string, kind models.Kind) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for _, r := range f.visible(kind, userID) {
		ids = append(ids, r.rec.RecordID())
	}

	return ids, nil
}

func (f *fakeStore) ApplyBatch(_ context.Context, userID string, writes []models.Write) error {
	f.mu.Lock()

	f.applyCalls++
	call := f.applyCalls

	if f.failAt == call {
		f.mu.Unlock()
		return fmt.Errorf("inserting row: %w", models.ErrDuplicateKey)
	}

	work := make(map[models.Kind][]fakeRow, len(f.rows))
	for k, rows := range f.rows {
		work[k] = append([]fakeRow(nil), rows...)
	}

	for _, w := range writes {
		if err := applyFake(work, userID, w); err != nil {
			f.mu.Unlock()
			return err
		}
	}

	f.rows = work
	hook := f.afterApply
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	return nil
}

func indexOf(rows []fakeRow, id string) int {
	for i, r := range rows {
		if r.rec.RecordID() == id {
			return i
		}
	}

	return -1
}

func applyFake(work map[models.Kind][]fakeRow, userID string, w models.Write) error {
	owner := userID
	if w.Kind.IsGlobal() {
		owner = ""
	}

	rows := work[w.Kind]

	switch w.Op {
	case models.OpInsert:
		if indexOf(rows, w.ID) >= 0 {
			return fmt.Errorf("inserting %s %s: %w", w.Kind, w.ID, models.ErrDuplicateKey)
		}

		rec := cloneRecord(w.Record)
		rec.SetRecordID(w.ID)
		work[w.Kind] = append(rows, fakeRow{owner: owner, rec: rec})

	case models.OpUpdate:
		i := indexOf(rows, w.ID)
		if i < 0 || rows[i].owner != owner {
			return fmt.Errorf("updating %s %s: row not found", w.Kind, w.ID)
		}

		rows[i].rec = cloneRecord(w.Record)

	case models.OpRekey:
		i := indexOf(rows, w.OldID)
		if i < 0 {
			return fmt.Errorf("re-keying %s %s: row not found", w.Kind, w.OldID)
		}

		if indexOf(rows, w.ID) >= 0 {
			return fmt.Errorf("re-keying %s to %s: %w", w.Kind, w.ID, models.ErrDuplicateKey)
		}

		rec := cloneRecord(rows[i].rec)
		rec.SetRecordID(w.ID)
		rows[i].rec = rec

		if w.Kind == models.KindDimensions {
			cascadeDimension(work, w.OldID, w.ID)
		}
	}

	return nil
}

// cascadeDimension mimics ON UPDATE CASCADE for dimension references.
func cascadeDimension(work map[models.Kind][]fakeRow, oldID, newID string) {
	repoint := func(p *string) *string {
		if p != nil && *p == oldID {
			return &newID
		}

		return p
	}

	for _, kind := range []models.Kind{
		models.KindMetricDefinitions, models.KindScoreDefinitions,
		models.KindMilestones, models.KindTasks,
	} {
		for i, r := range work[kind] {
			rec := cloneRecord(r.rec)

			switch x := rec.(type) {
			case *models.MetricDefinition:
				x.DimensionID = repoint(x.DimensionID)
			case *models.ScoreDefinition:
				x.DimensionID = repoint(x.DimensionID)
			case *models.Task:
				x.DimensionID = repoint(x.DimensionID)
			case *models.Milestone:
				if x.DimensionID == oldID {
					x.DimensionID = newID
				}
			}

			work[kind][i].rec = rec
		}
	}
}

func (f *fakeStore) ExportUserData(_ context.Context, userID string) (*models.SnapshotData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}

	p := *profile
	data := &models.SnapshotData{Profile: &p}

	for _, kind := range models.Kinds {
		for _, r := range f.visible(kind, userID) {
			rec := cloneRecord(r.rec)

			if ua, ok := rec.(*models.UserAchievement); ok {
				for _, a := range f.rows[models.KindAchievements] {
					if a.rec.RecordID() == ua.AchievementID {
						ua.AchievementCode = a.rec.(*models.Achievement).Code
					}
				}
			}

			if err := data.Append(rec); err != nil {
				return nil, err
			}
		}
	}

	return data, nil
}

// recordingSink collects events.
type recordingSink struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recordingSink) Enqueue(e *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}

	return out
}
