package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lifeos-app/lifeos/internal/models"
)

func TestExport_BuildsCurrentDocument(t *testing.T) {
	store := newFakeStore(userA)
	mustImport(t, newTestImporter(store), userA, fixtureDoc(), replaceMode)

	sink := &recordingSink{}

	doc, err := NewExporter(store, testLogger(), sink).Export(context.Background(), userA)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if doc.Schema.Version != models.SchemaVersion || doc.Schema.Generator != models.Generator {
		t.Errorf("schema = %+v", doc.Schema)
	}

	if doc.Schema.ExportedAt.IsZero() {
		t.Error("exportedAt not set")
	}

	if doc.Meta.TotalEntities != 26 {
		t.Errorf("total = %d, want 26", doc.Meta.TotalEntities)
	}

	if problems := doc.VerifyMeta(); len(problems) != 0 {
		t.Errorf("meta inconsistent: %v", problems)
	}

	if got := sink.types(); len(got) != 1 || got[0] != EventExportCompleted {
		t.Errorf("events = %v", got)
	}
}

func TestExport_UnknownUser(t *testing.T) {
	_, err := NewExporter(newFakeStore(), testLogger(), nil).Export(context.Background(), userA)
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestExport_EmptyUser(t *testing.T) {
	doc, err := NewExporter(newFakeStore(userA), testLogger(), nil).Export(context.Background(), userA)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Meta.TotalEntities != 0 || doc.Data.UserXP != nil {
		t.Errorf("expected an empty document, got %+v", doc.Meta)
	}
}
